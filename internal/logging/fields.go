package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// PackageFields 提供包名/类型/模式/命中状态字段，供构建请求日志复用。
func PackageFields(name, assetType, mode string, cacheHit bool) logrus.Fields {
	return logrus.Fields{
		"package":    name,
		"asset_type": assetType,
		"mode":       mode,
		"cache_hit":  cacheHit,
	}
}
