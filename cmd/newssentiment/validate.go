package main

import (
	"fmt"

	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/models"
	"github.com/g59Horhe/Global-News-Sentiment-Market-Intelligence-System/internal/sources"
)

// ValidateFlags 验证合并后的采集参数
func ValidateFlags(config *models.ScrapeConfig, seedFile string) error {
	if err := config.Validate(); err != nil {
		return err
	}

	// 来源子集必须都是内置来源
	catalog := sources.DefaultCatalog()
	for _, id := range config.Sources {
		if _, ok := catalog.Get(id); !ok {
			return fmt.Errorf("未知的来源: %s (有效值: bbc, guardian, ap, cnn, reuters)", id)
		}
	}

	// 种子文件只在采集单一来源时有意义
	if seedFile != "" && len(config.Sources) != 1 {
		return fmt.Errorf("使用--seed-file时必须通过--sources指定恰好一个来源")
	}

	return nil
}
