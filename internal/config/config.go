package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	PersistenceMemory = "memory"
	PersistenceBolt   = "bolt"

	ExpressionLanguageFeel = "feel"
	ExpressionLanguageJs   = "js"
)

type Config struct {
	Server      Server      `yaml:"server" json:"server"` // configuration of the public REST server
	Name        string      `yaml:"name" json:"name" env:"APP_NAME" env-default:"zenflow"` // used for OTEL as an application identifier
	Tracing     Tracing     `yaml:"tracing" json:"tracing"`
	Engine      Engine      `yaml:"engine" json:"engine"`
	Jobs        Jobs        `yaml:"jobs" json:"jobs"`
	Persistence Persistence `yaml:"persistence" json:"persistence"`
	Script      Script      `yaml:"script" json:"script"`
}

type Server struct {
	Context string `yaml:"context" json:"context" env:"REST_API_CONTEXT" env-default:"/"`
	Addr    string `yaml:"addr" json:"addr" env:"REST_API_ADDR" env-default:":8080"`
	// AllowedOrigins of cross-origin requests; empty allows any origin.
	AllowedOrigins []string `yaml:"allowedOrigins" json:"allowedOrigins" env:"REST_API_ALLOWED_ORIGINS" env-separator:","`
}

type Tracing struct {
	Enabled  bool   `yaml:"enabled" json:"enabled" env:"OTEL_ENABLED"`
	Endpoint string `yaml:"endpoint" json:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4318"`
	Name     string `yaml:"name" json:"name" env:"OTEL_SERVICE_NAME" env-default:"zenflow"`
	// TransferHeaders are request headers copied to the request span and context.
	TransferHeaders []string `yaml:"transferHeaders" json:"transferHeaders" env:"OTEL_TRANSFER_HEADERS" env-separator:","`
}

type Engine struct {
	// NodeId identifies this engine as a lock owner. Generated when empty.
	NodeId             string        `yaml:"nodeId" json:"nodeId" env:"ENGINE_NODE_ID"`
	ExpressionLanguage string        `yaml:"expressionLanguage" json:"expressionLanguage" env:"ENGINE_EXPRESSION_LANGUAGE" env-default:"feel"`
	WorkflowCacheSize  int           `yaml:"workflowCacheSize" json:"workflowCacheSize" env:"ENGINE_WORKFLOW_CACHE_SIZE" env-default:"256"`
	WorkflowCacheTTL   time.Duration `yaml:"workflowCacheTTL" json:"workflowCacheTTL" env:"ENGINE_WORKFLOW_CACHE_TTL" env-default:"1h"`
	AsyncWorkers       int           `yaml:"asyncWorkers" json:"asyncWorkers" env:"ENGINE_ASYNC_WORKERS" env-default:"8"`
	// LockRetries bounds the attempts to lock a caller instance when a sub-workflow ends.
	LockRetries uint64 `yaml:"lockRetries" json:"lockRetries" env:"ENGINE_LOCK_RETRIES" env-default:"10"`
}

type Jobs struct {
	PollInterval     time.Duration `yaml:"pollInterval" json:"pollInterval" env:"JOBS_POLL_INTERVAL" env-default:"1s"`
	InstanceWorkers  int           `yaml:"instanceWorkers" json:"instanceWorkers" env:"JOBS_INSTANCE_WORKERS" env-default:"4"`
	FreeWorkers      int           `yaml:"freeWorkers" json:"freeWorkers" env:"JOBS_FREE_WORKERS" env-default:"2"`
	MaxJobExecutions int           `yaml:"maxJobExecutions" json:"maxJobExecutions" env:"JOBS_MAX_EXECUTIONS" env-default:"5"`
	BatchSize        int           `yaml:"batchSize" json:"batchSize" env:"JOBS_BATCH_SIZE" env-default:"32"`
	// LockLease is how long a claimed job stays claimed before another node may claim it again.
	LockLease time.Duration `yaml:"lockLease" json:"lockLease" env:"JOBS_LOCK_LEASE" env-default:"5m"`
}

type Persistence struct {
	Type     string `yaml:"type" json:"type" env:"PERSISTENCE_TYPE" env-default:"memory"`
	BoltPath string `yaml:"boltPath" json:"boltPath" env:"PERSISTENCE_BOLT_PATH" env-default:"zenflow.db"`
}

type Script struct {
	MinVmPoolSize int `yaml:"minVmPoolSize" json:"minVmPoolSize" env:"SCRIPT_MIN_VM_POOL_SIZE" env-default:"2"`
	MaxVmPoolSize int `yaml:"maxVmPoolSize" json:"maxVmPoolSize" env:"SCRIPT_MAX_VM_POOL_SIZE" env-default:"10"`
}

func (c Config) defaults() Config {
	if c.Engine.NodeId == "" {
		c.Engine.NodeId = uuid.NewString()
	}
	if c.Script.MaxVmPoolSize < c.Script.MinVmPoolSize {
		c.Script.MaxVmPoolSize = c.Script.MinVmPoolSize
	}
	return c
}

// Validate reports configuration values the server cannot start with.
func (c Config) Validate() error {
	var errJoin error
	switch c.Persistence.Type {
	case PersistenceMemory, PersistenceBolt:
	default:
		errJoin = errors.Join(errJoin, fmt.Errorf("unknown persistence type %q", c.Persistence.Type))
	}
	switch c.Engine.ExpressionLanguage {
	case ExpressionLanguageFeel, ExpressionLanguageJs:
	default:
		errJoin = errors.Join(errJoin, fmt.Errorf("unknown expression language %q", c.Engine.ExpressionLanguage))
	}
	if c.Jobs.PollInterval <= 0 {
		errJoin = errors.Join(errJoin, fmt.Errorf("jobs poll interval must be positive"))
	}
	return errJoin
}

func InitConfig() Config {
	c := Config{}
	var fileName string
	confFile := os.Getenv("CONFIG_FILE")
	if confFile == "" {
		wd, err := os.Getwd()
		if err != nil {
			panic(err)
		}
		fileName = fmt.Sprintf("%s/conf.yaml", wd)
	} else {
		fileName = confFile
	}
	var err error
	if _, perr := os.Stat(fileName); errors.Is(perr, os.ErrNotExist) {
		err = cleanenv.ReadEnv(&c)
		fmt.Printf("Configuration file %s not found. Reading config from ENV.\n", fileName)
	} else {
		err = cleanenv.ReadConfig(fileName, &c)
	}
	if err != nil {
		fmt.Printf("Error occurred while reading the configuration: %s\n", err)
		panic(err)
	}
	return c.defaults()
}
