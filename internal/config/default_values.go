package config

const (
	DefaultProviderTimeoutMS  = 60000
	DefaultTemperature        = 0.5
	DefaultImageTimeoutMS     = 90000
	DefaultTranslateTimeoutMS = 10000
	DefaultTranslateRPM       = 30

	DefaultLogLevel = "info"
	DefaultDBFile   = "lenai.db"
)
