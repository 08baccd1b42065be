package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"github.com/wkalt/mohair/launcher"
	"github.com/wkalt/mohair/service"
	"github.com/wkalt/mohair/storage"
)

var (
	serveDataDir         string
	serveCacheSize       int64
	servePprofAddr       string
	serveShutdownTimeout time.Duration
	serveHealthInterval  time.Duration
	serveTLSCert         string
	serveTLSKey          string
	serveVerify          bool

	// S3 storage provider options
	serveS3Endpoint  string
	serveS3AccessKey string
	serveS3SecretKey string
	serveS3Bucket    string
	serveS3Region    string
	serveS3Prefix    string
	serveS3UseTLS    bool
)

// serveEnv holds serve settings read from MOHAIR_* environment variables.
type serveEnv struct {
	CacheSize       int64         `envconfig:"CACHE_SIZE" default:"1000"`
	PprofAddr       string        `envconfig:"PPROF_ADDR"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	HealthInterval  time.Duration `envconfig:"HEALTH_INTERVAL" default:"10s"`
	TLSCert         string        `envconfig:"TLS_CERT"`
	TLSKey          string        `envconfig:"TLS_KEY"`
	Verify          bool          `envconfig:"VERIFY"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Region    string `envconfig:"S3_REGION"`
	S3Prefix    string `envconfig:"S3_PREFIX" default:"mohair"`
	S3UseTLS    bool   `envconfig:"S3_TLS"`
}

func (e serveEnv) s3Requested() bool {
	return e.S3Endpoint != "" || e.S3AccessKey != "" || e.S3SecretKey != "" || e.S3Bucket != ""
}

func (e serveEnv) s3Config() storage.S3Config {
	return storage.S3Config{
		Endpoint:  e.S3Endpoint,
		AccessKey: e.S3AccessKey,
		SecretKey: e.S3SecretKey,
		Bucket:    e.S3Bucket,
		Region:    e.S3Region,
		Prefix:    e.S3Prefix,
		UseTLS:    e.S3UseTLS,
	}
}

// resolveServeEnv applies explicitly set flags over the environment.
func resolveServeEnv(cmd *cobra.Command) (serveEnv, error) {
	env := serveEnv{}
	if err := envconfig.Process(launcher.EnvPrefix, &env); err != nil {
		return serveEnv{}, fmt.Errorf("failed to read environment: %w", err)
	}
	override(cmd, "cache-size", &env.CacheSize, serveCacheSize)
	override(cmd, "pprof-addr", &env.PprofAddr, servePprofAddr)
	override(cmd, "shutdown-timeout", &env.ShutdownTimeout, serveShutdownTimeout)
	override(cmd, "health-interval", &env.HealthInterval, serveHealthInterval)
	override(cmd, "tls-cert", &env.TLSCert, serveTLSCert)
	override(cmd, "tls-key", &env.TLSKey, serveTLSKey)
	override(cmd, "verify", &env.Verify, serveVerify)
	override(cmd, "s3-endpoint", &env.S3Endpoint, serveS3Endpoint)
	override(cmd, "s3-access-key-id", &env.S3AccessKey, serveS3AccessKey)
	override(cmd, "s3-secret-key", &env.S3SecretKey, serveS3SecretKey)
	override(cmd, "s3-bucket", &env.S3Bucket, serveS3Bucket)
	override(cmd, "s3-region", &env.S3Region, serveS3Region)
	override(cmd, "s3-prefix", &env.S3Prefix, serveS3Prefix)
	override(cmd, "s3-tls", &env.S3UseTLS, serveS3UseTLS)
	if env.CacheSize < 0 {
		return serveEnv{}, fmt.Errorf("cache size must not be negative: %d", env.CacheSize)
	}
	if env.s3Requested() && (env.S3Endpoint == "" || env.S3Bucket == "") {
		return serveEnv{}, errors.New("S3 storage requires an endpoint and a bucket")
	}
	return env, nil
}

// serviceFactory builds the database service. The location and options are
// validated before any S3 connection is attempted.
func serviceFactory(ctx context.Context, env serveEnv, opts []service.Option) launcher.Factory {
	return func(serviceLocation, dbPath string) (launcher.Service, error) {
		svc, err := service.NewDatabaseService(serviceLocation, dbPath, opts...)
		if err != nil {
			return nil, err
		}
		if !env.s3Requested() {
			return svc, nil
		}
		store, err := storage.DialS3(ctx, env.s3Config())
		if err != nil {
			return nil, fmt.Errorf("error creating S3 store: %w", err)
		}
		withStore := append(append([]service.Option{}, opts...), service.WithStorageProvider(store))
		svc, err = service.NewDatabaseService(serviceLocation, dbPath, withStore...)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mohair server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		override(cmd, "data-dir", &cfg.DBPath, serveDataDir)
		env, err := resolveServeEnv(cmd)
		if err != nil {
			return err
		}
		opts := []service.Option{
			service.WithCacheSize(env.CacheSize),
			service.WithPprofAddr(env.PprofAddr),
			service.WithShutdownTimeout(env.ShutdownTimeout),
			service.WithHealthInterval(env.HealthInterval),
			service.WithVerifyOnStart(env.Verify),
		}
		if env.TLSCert != "" || env.TLSKey != "" {
			opts = append(opts, service.WithTLS(env.TLSCert, env.TLSKey))
		}
		return launcher.Launch(ctx, cfg, serviceFactory(ctx, env, opts))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.PersistentFlags().StringVarP(&serveDataDir, "data-dir", "d", launcher.DefaultDBPath, "Data directory")
	serveCmd.PersistentFlags().Int64VarP(&serveCacheSize, "cache-size", "c", 1000, "Number of translated plans to cache")
	serveCmd.PersistentFlags().StringVar(&servePprofAddr, "pprof-addr", "", "Address for the pprof server (disabled if empty)")
	serveCmd.PersistentFlags().DurationVar(
		&serveShutdownTimeout, "shutdown-timeout", 10*time.Second, "Time allowed for requests to drain on shutdown",
	)
	serveCmd.PersistentFlags().DurationVar(
		&serveHealthInterval, "health-interval", 10*time.Second, "How often to check the catalog (disabled if zero)",
	)
	serveCmd.PersistentFlags().StringVar(&serveTLSCert, "tls-cert", "", "TLS certificate file (for grpc+tls)")
	serveCmd.PersistentFlags().StringVar(&serveTLSKey, "tls-key", "", "TLS key file (for grpc+tls)")
	serveCmd.PersistentFlags().BoolVar(&serveVerify, "verify", false, "Verify stored plans before serving")

	serveCmd.PersistentFlags().StringVar(&serveS3Endpoint, "s3-endpoint", "", "S3 endpoint (for S3 storage)")
	serveCmd.PersistentFlags().StringVar(&serveS3AccessKey, "s3-access-key-id", "", "S3 access key ID (for S3 storage)")
	serveCmd.PersistentFlags().StringVar(&serveS3SecretKey, "s3-secret-key", "", "S3 secret key (for S3 storage)")
	serveCmd.PersistentFlags().StringVar(&serveS3Bucket, "s3-bucket", "", "S3 bucket (for S3 storage)")
	serveCmd.PersistentFlags().StringVar(&serveS3Region, "s3-region", "", "S3 region")
	serveCmd.PersistentFlags().StringVar(&serveS3Prefix, "s3-prefix", "mohair", "Key prefix within the S3 bucket")
	serveCmd.PersistentFlags().BoolVarP(&serveS3UseTLS, "s3-tls", "t", false, "Use TLS (for S3 storage)")
}
