// Package session はサインイン中ユーザーIDをローカルに永続化する。
package session

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gorilla/securecookie"
)

// KeyValue はローカルの永続キーバリューストアのインターフェース。
type KeyValue interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// FileKV はJSONファイル1つにキーと値を保存するKeyValue実装。
// 値はsecurecookieで署名・暗号化して保存し、改ざんされた値は存在しないものとして扱う。
type FileKV struct {
	path  string
	codec *securecookie.SecureCookie
	mu    sync.Mutex
}

// NewFileKV はFileKVを生成する。secretから署名鍵と暗号鍵を導出する。
func NewFileKV(path, secret string) (*FileKV, error) {
	if path == "" {
		return nil, errors.New("session file path is empty")
	}
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}

	hashKey := sha256.Sum256([]byte("todosync-session-hash:" + secret))
	blockKey := sha256.Sum256([]byte("todosync-session-block:" + secret))
	codec := securecookie.New(hashKey[:], blockKey[:])
	// セッションはログアウトまで保持するため有効期限チェックは行わない
	codec.MaxAge(0)

	return &FileKV{path: path, codec: codec}, nil
}

// Get はキーに対応する値を返す。存在しない、または復号できない場合はfalseを返す。
func (kv *FileKV) Get(ctx context.Context, key string) (string, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	entries, err := kv.readAll()
	if err != nil {
		return "", false, err
	}

	encoded, ok := entries[key]
	if !ok {
		return "", false, nil
	}

	var value string
	if err := kv.codec.Decode(key, encoded, &value); err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			return "", false, nil
		}
		return "", false, fmt.Errorf("decode %s: %w", key, err)
	}
	return value, true, nil
}

// Set はキーに値を保存する。既存の値は上書きされる。
func (kv *FileKV) Set(ctx context.Context, key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	encoded, err := kv.codec.Encode(key, value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	entries, err := kv.readAll()
	if err != nil {
		return err
	}
	entries[key] = encoded
	return kv.writeAll(entries)
}

// Remove はキーを削除する。存在しないキーの削除は成功として扱う。
func (kv *FileKV) Remove(ctx context.Context, key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	entries, err := kv.readAll()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return kv.writeAll(entries)
}

func (kv *FileKV) readAll() (map[string]string, error) {
	data, err := os.ReadFile(kv.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	return entries, nil
}

// writeAll は一時ファイルに書き込んでからリネームする。
func (kv *FileKV) writeAll(entries map[string]string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal session file: %w", err)
	}

	dir := filepath.Dir(kv.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}
	if err := os.Rename(tmpName, kv.path); err != nil {
		return fmt.Errorf("rename session file: %w", err)
	}
	return nil
}

// compile-time interface check
var _ KeyValue = (*FileKV)(nil)
