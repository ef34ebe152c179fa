package http

import (
	"strconv"

	"medexa/internal/domain"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func sessionFor(uid string) domain.Session {
	return domain.Session{UID: uid, Email: uid + "@example.com"}
}
