package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gocql/gocql"
	"github.com/redis/go-redis/v9"
)

// --- Configuration ScyllaDB ---
type ScyllaConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	SSLEnabled  bool
	CACertPath  string
	Timeout     time.Duration
	NumConns    int
	Consistency gocql.Consistency
}

type ScyllaManager struct {
	session *gocql.Session
	config  ScyllaConfig
	mu      sync.Mutex
}

// --- Variables Globales ---
var (
	Scylla *ScyllaManager
	Redis  *redis.Client
)

// --- Initialisation ---
func ConnectDatabases() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. Initialiser ScyllaDB
	if err := InitScyllaDB(); err != nil {
		log.Fatalf("❌ Échec initialisation ScyllaDB: %v", err)
	}

	// 2. Initialiser Redis
	connectRedis(ctx)

	log.Println("✅ Toutes les bases de données sont connectées")
}

// =============================================
// SCYLLA DB
// =============================================

// InitScyllaDB initialise la session ScyllaDB du keyspace boutique
func InitScyllaDB() error {
	Scylla = &ScyllaManager{config: loadScyllaConfig()}

	if _, err := GetStoreSession(); err != nil {
		return fmt.Errorf("échec initialisation keyspace %s: %v", Scylla.config.Keyspace, err)
	}

	// Note: Les tables doivent être créées manuellement via scripts/scylladb_init.cql
	return nil
}

// loadScyllaConfig charge la configuration depuis .env
func loadScyllaConfig() ScyllaConfig {
	keyspace := os.Getenv("SCYLLA_KEYSPACE")
	if keyspace == "" {
		keyspace = "ks_store"
	}

	return ScyllaConfig{
		Hosts:       strings.Split(os.Getenv("SCYLLA_HOSTS"), ","),
		Keyspace:    keyspace,
		Username:    os.Getenv("SCYLLA_ROLE"),
		Password:    os.Getenv("SCYLLA_PASSWORD"),
		SSLEnabled:  strings.ToLower(os.Getenv("SCYLLA_SSL_ENABLED")) == "true",
		CACertPath:  os.Getenv("SCYLLA_SSL_CA_PATH"),
		Timeout:     5 * time.Second,
		NumConns:    20,
		Consistency: gocql.Quorum,
	}
}

// GetStoreSession retourne la session du keyspace boutique (créée à la demande)
func GetStoreSession() (*gocql.Session, error) {
	Scylla.mu.Lock()
	defer Scylla.mu.Unlock()

	if Scylla.session != nil && !Scylla.session.Closed() {
		return Scylla.session, nil
	}

	session, err := createSession(Scylla.config)
	if err != nil {
		return nil, err
	}

	Scylla.session = session
	log.Printf("✅ Session ScyllaDB ouverte (keyspace %s)", Scylla.config.Keyspace)
	return session, nil
}

func createSession(cfg ScyllaConfig) (*gocql.Session, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Timeout = cfg.Timeout
	cluster.NumConns = cfg.NumConns
	cluster.Consistency = cfg.Consistency

	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	if cfg.SSLEnabled {
		cluster.SslOpts = &gocql.SslOptions{CaPath: cfg.CACertPath}
	}

	return cluster.CreateSession()
}

// =============================================
// REDIS
// =============================================

func connectRedis(ctx context.Context) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	db := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			db = parsed
		}
	}

	Redis = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	if err := Redis.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis injoignable (%s): %v", addr, err)
		return
	}
	log.Println("✅ Connecté à Redis :", addr)
}
