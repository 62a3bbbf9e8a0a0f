package config

const (
	DefaultSuffix         = ".gz"
	DefaultBackrestBinary = "pgbackrest"
	DefaultWALSegSize     = "16MB"
	DefaultRetentionFull  = 1
	DefaultPGPort         = 5432
	DefaultSSLMode        = "prefer"
	DefaultPGUser         = "postgres"
	DefaultPGDatabase     = "postgres"
)
