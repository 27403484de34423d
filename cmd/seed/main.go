package main

import (
	"github.com/morimall/morimall/internal/config"
	"github.com/morimall/morimall/internal/constants"
	"github.com/morimall/morimall/internal/logger"
	"github.com/morimall/morimall/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认积分计划与抵扣商品
	if err := models.InitLoyaltyDefaults(cfg.Loyalty.DefaultProgram); err != nil {
		stdLog.Fatalf("Failed to init loyalty defaults: %v", err)
	}

	// 示例商品
	products := []models.Product{
		{
			Name:        "Wireless Bluetooth Earphones",
			DefaultCode: "EL-0001",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(99.90)),
			WeightKG:    0.2,
			Active:      true,
		},
		{
			Name:        "Smart Watch",
			DefaultCode: "EL-0002",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(199.00)),
			WeightKG:    0.3,
			Active:      true,
		},
		{
			Name:        "Portable Power Bank 20000mAh",
			DefaultCode: "EL-0003",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(59.90)),
			WeightKG:    0.45,
			Active:      true,
		},
		{
			Name:        "Insulated Tumbler 500ml",
			DefaultCode: "LS-0001",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(35.00)),
			WeightKG:    0.35,
			Active:      true,
		},
	}
	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("default_code = ?", product.DefaultCode).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.DefaultCode, err)
			} else {
				stdLog.Printf("Created product: %s", product.DefaultCode)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.DefaultCode)
		}
	}

	// 示例客户与积分卡
	var program models.LoyaltyProgram
	if err := models.DB.Where("active = ?", true).First(&program).Error; err != nil {
		stdLog.Fatalf("Failed to load loyalty program: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash demo password: %v", err)
	}
	customers := []struct {
		customer models.Customer
		points   float64
	}{
		{
			customer: models.Customer{
				Name:         "Tan Ah Kow",
				Email:        "tan@example.com",
				Mobile:       "012-345 6789",
				PasswordHash: string(hash),
				Status:       constants.CustomerStatusActive,
				Street:       "12 Jalan Besar",
				City:         "Kajang",
				Zip:          "43000",
				StateName:    "Selangor",
				CountryName:  "Malaysia",
			},
			points: 500,
		},
		{
			customer: models.Customer{
				Name:         "Siti Nurhaliza",
				Email:        "siti@example.com",
				Mobile:       "019-876 5432",
				PasswordHash: string(hash),
				Status:       constants.CustomerStatusActive,
				Street:       "88 Lorong Damai",
				City:         "George Town",
				Zip:          "10450",
				StateName:    "Pulau Pinang",
				CountryName:  "Malaysia",
			},
			points: 120,
		},
	}
	for _, seed := range customers {
		var existing models.Customer
		if err := models.DB.Where("email = ?", seed.customer.Email).First(&existing).Error; err == nil {
			stdLog.Printf("Customer already exists: %s", seed.customer.Email)
			continue
		}
		customer := seed.customer
		if err := models.DB.Create(&customer).Error; err != nil {
			stdLog.Printf("Failed to create customer %s: %v", customer.Email, err)
			continue
		}
		card := models.LoyaltyCard{
			ProgramID:  program.ID,
			CustomerID: customer.ID,
			Code:       "LC-" + customer.Email[:3] + "DEMO",
			Points:     seed.points,
		}
		if err := models.DB.Create(&card).Error; err != nil {
			stdLog.Printf("Failed to create loyalty card for %s: %v", customer.Email, err)
			continue
		}
		entry := models.LoyaltyHistoryEntry{
			CardID:      card.ID,
			EntryType:   constants.LoyaltyEntryTypeAdjust,
			Description: "Initial demo balance",
			Issued:      seed.points,
		}
		if err := models.DB.Create(&entry).Error; err != nil {
			stdLog.Printf("Failed to create loyalty history for %s: %v", customer.Email, err)
		}
		stdLog.Printf("Created customer: %s", customer.Email)
	}

	stdLog.Printf("Seed finished")
}
