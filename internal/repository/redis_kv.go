package repository

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const kvKeyPrefix = "companion:kv:"

// RedisKV implements a string-keyed durable store over Redis. Values are
// JSON-serialized and, when an encryption key is configured, sealed with
// AES-GCM before they touch the wire.
type RedisKV struct {
	client *redis.Client
	aead   cipher.AEAD
}

// NewRedisKV creates a KV store. encryptionKey may be empty, in which case
// values are stored as plain JSON.
func NewRedisKV(client *redis.Client, encryptionKey string) (*RedisKV, error) {
	kv := &RedisKV{client: client}

	if encryptionKey != "" {
		// Derive a fixed-size key from the configured passphrase
		sum := sha256.Sum256([]byte(encryptionKey))
		block, err := aes.NewCipher(sum[:])
		if err != nil {
			return nil, fmt.Errorf("failed to create cipher: %w", err)
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("failed to create AEAD: %w", err)
		}
		kv.aead = aead
	}

	return kv, nil
}

// Get retrieves and decodes the value at key. The bool reports whether the
// key existed; decode and decrypt failures are returned as errors.
func (kv *RedisKV) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	tracer := otel.Tracer("redis-kv")
	ctx, span := tracer.Start(ctx, "kv.Get",
		trace.WithAttributes(attribute.String("kv.key", key)),
	)
	defer span.End()

	data, err := kv.client.Get(ctx, kvKeyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			span.SetAttributes(attribute.String("kv.result", "miss"))
			return false, nil
		}
		span.RecordError(err)
		return false, fmt.Errorf("redis get error: %w", err)
	}

	span.SetAttributes(attribute.String("kv.result", "hit"))

	if kv.aead != nil {
		data, err = kv.open(data)
		if err != nil {
			span.RecordError(err)
			return true, fmt.Errorf("failed to decrypt value for key %s: %w", key, err)
		}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		span.RecordError(err)
		return true, fmt.Errorf("failed to unmarshal value for key %s: %w", key, err)
	}

	return true, nil
}

// Set serializes value and writes it at key with no expiry
func (kv *RedisKV) Set(ctx context.Context, key string, value interface{}) error {
	tracer := otel.Tracer("redis-kv")
	ctx, span := tracer.Start(ctx, "kv.Set",
		trace.WithAttributes(attribute.String("kv.key", key)),
	)
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if kv.aead != nil {
		data, err = kv.seal(data)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to encrypt value for key %s: %w", key, err)
		}
	}

	if err := kv.client.Set(ctx, kvKeyPrefix+key, data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

// Delete removes keys from the store
func (kv *RedisKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tracer := otel.Tracer("redis-kv")
	ctx, span := tracer.Start(ctx, "kv.Delete",
		trace.WithAttributes(attribute.Int("kv.key_count", len(keys))),
	)
	defer span.End()

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = kvKeyPrefix + k
	}

	if err := kv.client.Del(ctx, prefixed...).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis delete error: %w", err)
	}

	return nil
}

// ClearAll removes every key owned by this store (use sparingly - O(N))
func (kv *RedisKV) ClearAll(ctx context.Context) error {
	keys, err := kv.client.Keys(ctx, kvKeyPrefix+"*").Result()
	if err != nil {
		return fmt.Errorf("redis keys error: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return kv.client.Del(ctx, keys...).Err()
}

func (kv *RedisKV) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, kv.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return kv.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (kv *RedisKV) open(sealed []byte) ([]byte, error) {
	if len(sealed) < kv.aead.NonceSize() {
		return nil, fmt.Errorf("ciphertext shorter than nonce")
	}
	nonce, ciphertext := sealed[:kv.aead.NonceSize()], sealed[kv.aead.NonceSize():]
	return kv.aead.Open(nil, nonce, ciphertext, nil)
}
