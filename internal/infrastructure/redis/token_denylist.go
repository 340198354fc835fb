// Package redis guarda en Redis los tokens revocados por logout.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/almacen-api/pkg/config"
)

const keyPrefix = "almacen:revoked:"

// NewClient abre el cliente y verifica la conexión con PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// TokenDenylist implementa auth.TokenRevoker. Cada token revocado es una clave con TTL igual
// a la vida restante del token, así Redis la elimina sola.
type TokenDenylist struct {
	client *goredis.Client
}

// NewTokenDenylist construye la lista sobre un cliente ya conectado.
func NewTokenDenylist(client *goredis.Client) *TokenDenylist {
	return &TokenDenylist{client: client}
}

// Revoke marca el token como revocado durante ttl. Un ttl no positivo no deja marca.
func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, keyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revocar token: %w", err)
	}
	return nil
}

// IsRevoked true si la marca del token sigue en Redis.
func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, keyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("consultar token revocado: %w", err)
	}
	return n > 0, nil
}
