package repo

// KeyValueStore — долговременное хранилище строковых значений по ключу
// (токен и профиль сессии). ok=false означает, что ключа нет.
type KeyValueStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}
