package config

import (
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Mongo
		Neo4j
		Redis
		Import
		Reconcile
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Mongo struct {
		URI      string
		Database string
	}
	Neo4j struct {
		URI      string
		Username string
		Password string
	}
	Redis struct {
		Addr string // empty disables the shared resolver cache
	}
	Import struct {
		BatchSize       int
		Workers         int // parallel batch workers for the optimized strategy
		MemoryCeilingMB int // GC hint threshold while parsing large files
		MaxFileSizeMB   int
	}
	Reconcile struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_database", "heritage")
	v.SetDefault("neo4j_uri", "bolt://localhost:7687")
	v.SetDefault("neo4j_username", "neo4j")
	v.SetDefault("neo4j_password", "")
	v.SetDefault("redis_addr", "")

	v.SetDefault("import_batch_size", DefaultBatchSize)
	v.SetDefault("import_workers", DefaultImportWorkers)
	v.SetDefault("import_memory_ceiling_mb", DefaultMemoryCeilingMB)
	v.SetDefault("import_max_file_size_mb", DefaultMaxFileSizeMB)

	v.SetDefault("reconcile_enabled", false)
	v.SetDefault("reconcile_schedule", "0 * * * *") // Hourly at :00

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Mongo: Mongo{
			URI:      v.GetString("MONGO_URI"),
			Database: v.GetString("MONGO_DATABASE"),
		},
		Neo4j: Neo4j{
			URI:      v.GetString("NEO4J_URI"),
			Username: v.GetString("NEO4J_USERNAME"),
			Password: v.GetString("NEO4J_PASSWORD"),
		},
		Redis: Redis{
			Addr: v.GetString("REDIS_ADDR"),
		},
		Import: Import{
			BatchSize:       v.GetInt("IMPORT_BATCH_SIZE"),
			Workers:         v.GetInt("IMPORT_WORKERS"),
			MemoryCeilingMB: v.GetInt("IMPORT_MEMORY_CEILING_MB"),
			MaxFileSizeMB:   v.GetInt("IMPORT_MAX_FILE_SIZE_MB"),
		},
		Reconcile: Reconcile{
			Enabled:  v.GetBool("RECONCILE_ENABLED"),
			Schedule: v.GetString("RECONCILE_SCHEDULE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
