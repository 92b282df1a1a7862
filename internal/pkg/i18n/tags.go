package i18n

// Tag names are stored in English; these are their display labels.
var tagLabels = map[string]map[string]string{
	"Beginner Basics": {
		"zh": "新手基础",
		"ja": "初心者の基礎",
		"ko": "초보자 기초",
		"ru": "Основы для новичков",
	},
	"Configuration & Manifest": {
		"zh": "配置与清单",
		"ja": "設定とマニフェスト",
		"ko": "구성 및 매니페스트",
		"ru": "Конфигурация и манифест",
	},
	"Channel Integrations": {
		"zh": "渠道集成",
		"ja": "チャネル連携",
		"ko": "채널 통합",
		"ru": "Интеграции каналов",
	},
	"Voice & Audio": {
		"zh": "语音与音频",
		"ja": "音声とオーディオ",
		"ko": "음성 및 오디오",
		"ru": "Голос и аудио",
	},
	"Deployment & Infrastructure": {
		"zh": "部署与基础设施",
		"ja": "デプロイとインフラ",
		"ko": "배포 및 인프라",
		"ru": "Развертывание и инфраструктура",
	},
	"Automation & Workflows": {
		"zh": "自动化与工作流",
		"ja": "自動化とワークフロー",
		"ko": "자동화 및 워크플로",
		"ru": "Автоматизация и рабочие процессы",
	},
}

var allLabels = map[string]string{
	"en": "All",
	"zh": "全部",
	"ja": "すべて",
	"ko": "전체",
	"ru": "Все",
}

// TagLabel returns the localized label of a tag or the stored name when none exists.
func TagLabel(name, locale string) string {
	if label, ok := tagLabels[name][locale]; ok {
		return label
	}
	return name
}

// AllTagsLabel is the label of the "all tags" filter.
func AllTagsLabel(locale string) string {
	if label, ok := allLabels[locale]; ok {
		return label
	}
	return allLabels[DefaultLocale]
}
