package dispatch

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"scorehub/internal/application/requests"
)

// adminTokenLayout - час, до которого усекается время в админском токене.
// Токен администратора действителен в пределах текущего часа.
const adminTokenLayout = "2006010215"

// AuthConfig - секреты деривации токенов. Задаются конфигурацией
// развёртывания и не видны в протоколе.
type AuthConfig struct {
	Salt       string
	AdminSalt  string
	AdminLogin string
}

// UserToken - ожидаемый токен обычного пользователя:
// SHA-512 от конкатенации account, login и общей соли.
// Отсутствующий account участвует как пустая строка.
func UserToken(account, login, salt string) string {
	return digest(account + login + salt)
}

// AdminToken - ожидаемый токен администратора на момент now:
// SHA-512 от часа (YYYYMMDDHH) и админской соли.
func AdminToken(now time.Time, adminSalt string) string {
	return digest(now.Format(adminTokenLayout) + adminSalt)
}

// CheckAuth сверяет предъявленный токен с ожидаемым.
// Сравнение выполняется за константное время.
func CheckAuth(r *requests.MethodRequest, cfg AuthConfig) bool {
	var expected string
	if r.IsAdmin(cfg.AdminLogin) {
		expected = AdminToken(time.Now(), cfg.AdminSalt)
	} else {
		expected = UserToken(r.Account, r.Login, cfg.Salt)
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(r.Token)) == 1
}

func digest(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}
