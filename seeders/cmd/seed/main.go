package main

import (
	"context"
	"flag"
	"log"
	"os"

	"inventory-system/internal/infrastructure/migrations"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/config"
	"inventory-system/pkg/database/postgresql"
	"inventory-system/seeders"

	"go.uber.org/zap"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runMigrate := flag.Bool("migrate", false, "Применить миграции перед наполнением")
	runAdmin := flag.Bool("admin", false, "Создать встроенного администратора 'admin'")
	runSettings := flag.Bool("settings", false, "Дописать настройки по умолчанию в app_config")
	runAll := flag.Bool("all", false, "Запустить всё (эквивалентно -migrate -admin -settings)")
	resetPassword := flag.Bool("reset-password", false, "Сбросить пароль существующего администратора")
	resetSettings := flag.Bool("reset-settings", false, "Вернуть все настройки к значениям по умолчанию")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "Пароль администратора (по умолчанию ADMIN_PASSWORD)")

	flag.Parse()

	if !*runMigrate && !*runAdmin && !*runSettings && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -all -password 'S3nha!'")
		log.Println("  go run ./seeders/cmd/seed -admin -reset-password -password 'S3nha!'")
		log.Println("======================================================")
		return
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("❌ Ошибка конфигурации: %v", err)
	}

	ctx := context.Background()
	dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к БД: %v", err)
	}
	defer dbPool.Close()

	txManager := repositories.NewTxManager(dbPool)
	logger := zap.NewNop()

	if *runAll || *runMigrate {
		if err := migrations.Up(ctx, dbPool); err != nil {
			log.Fatalf("❌ Ошибка применения миграций: %v", err)
		}
		log.Println("✅ Миграции применены")
	}

	if *runAll || *runAdmin {
		users := repositories.NewUserRepository(dbPool, logger)
		if err := seeders.SeedAdmin(ctx, users, txManager, *password, cfg.Auth.BcryptCost, *resetPassword); err != nil {
			log.Fatalf("❌ Ошибка создания администратора: %v", err)
		}
	}

	if *runAll || *runSettings {
		settings := repositories.NewSettingsRepository(dbPool, logger)
		if err := seeders.SeedSettings(ctx, settings, txManager, *resetSettings); err != nil {
			log.Fatalf("❌ Ошибка наполнения настроек: %v", err)
		}
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
	log.Println("======================================================")
}
