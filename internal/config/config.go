package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig      `mapstructure:"app"`
	Server    ServerConfig   `mapstructure:"server"`
	Backup    BackupConfig   `mapstructure:"backup"`
	Databases []any          `mapstructure:"databases"`
	Uploads   []UploadTarget `mapstructure:"upload_targets"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

// ServerConfig describes the SQL Server instance the backups run against.
// One connection is shared by the whole batch run.
type ServerConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	Instance               string `mapstructure:"instance"`
	Username               string `mapstructure:"username"`
	Password               string `mapstructure:"password"`
	Database               string `mapstructure:"database"`
	TrustServerCertificate bool   `mapstructure:"trust_server_certificate"`
}

type BackupConfig struct {
	DestinationRoot      string        `mapstructure:"destination_root"`
	UseSubfolder         bool          `mapstructure:"use_subfolder"`
	CheckDatabase        bool          `mapstructure:"check_database"`
	CheckBackup          bool          `mapstructure:"check_backup"`
	CopyOnly             bool          `mapstructure:"copy_only"`
	BackupDatabase       bool          `mapstructure:"backup_database"`
	BackupTransactionLog bool          `mapstructure:"backup_transaction_log"`
	Differential         bool          `mapstructure:"differential"`
	Compression          bool          `mapstructure:"compression"`
	RetainDays           int           `mapstructure:"retain_days"`
	StopOnCheckFailure   bool          `mapstructure:"stop_on_check_failure"`
	PollInterval         time.Duration `mapstructure:"poll_interval"`
	RetentionDays        int           `mapstructure:"retention_days"`
	GzipUploads          bool          `mapstructure:"gzip_uploads"`
	Schedule             string        `mapstructure:"schedule"`
	CleanupSchedule      string        `mapstructure:"cleanup_schedule"`
}

type UploadTarget struct {
	Type    string `mapstructure:"type"`
	Enabled bool   `mapstructure:"enabled"`

	// Local mirror
	Path string `mapstructure:"path"`

	// Google Drive
	CredentialsFile string `mapstructure:"credentials_file"`
	FolderID        string `mapstructure:"folder_id"`

	// AWS S3
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`

	// Telegram (notification only)
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("app.name", "mssql-backup")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("server.port", 1433)
	v.SetDefault("server.database", "master")
	v.SetDefault("backup.backup_database", true)
	v.SetDefault("backup.poll_interval", "2s")
	v.SetDefault("backup.schedule", "0 0 1 * * *")
	v.SetDefault("backup.cleanup_schedule", "0 0 3 * * *")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Backup.DestinationRoot == "" {
		return fmt.Errorf("backup.destination_root is required")
	}
	if len(c.Databases) == 0 {
		return fmt.Errorf("at least one database entry is required")
	}
	if c.Backup.RetainDays < 0 {
		return fmt.Errorf("backup.retain_days must not be negative")
	}
	return nil
}

func (c *Config) GetEnabledUploadTargets() []UploadTarget {
	var enabled []UploadTarget
	for _, target := range c.Uploads {
		if target.Enabled {
			enabled = append(enabled, target)
		}
	}
	return enabled
}
