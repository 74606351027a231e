package storage

// Store 键值持久化接口，值整体覆盖写入
// Store is a durable key/value map. Save replaces the whole value for a key.
type Store interface {
	// Load returns ok=false when the key has never been saved.
	Load(key string) (value string, ok bool, err error)
	Save(key, value string) error
	Close() error
}

// 持久化键名 / Persisted keys
const (
	KeyHistory     = "lenai_history"
	KeyCredentials = "lenai_keys"
	KeyTheme       = "lenai_theme"
)
