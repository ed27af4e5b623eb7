package main

import (
	"elearn_quiz_backend/internal/app"
	"elearn_quiz_backend/internal/config"
	"elearn_quiz_backend/pkg/configwatcher"
	"elearn_quiz_backend/pkg/logger"
	"flag"
	"log"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	watchConfig := flag.Bool("watch-config", false, "监听配置文件变更并热加载")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	if *watchConfig {
		go configwatcher.WatchConfig("configs/config.yaml", application.ApplyConfig)
	}

	application.Run()
}
