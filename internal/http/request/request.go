// Package request разбирает параметры пути и строки запроса.
package request

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
)

// ErrBadParam — параметр не является неотрицательным целым числом.
var ErrBadParam = errors.New("bad parameter")

// ID возвращает положительный идентификатор из параметра пути name.
func ID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadParam, name, raw)
	}
	return id, nil
}

// Int возвращает неотрицательное целое из строки запроса. Отсутствующий параметр даёт 0.
func Int(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadParam, name, raw)
	}
	return v, nil
}

// Page возвращает limit и offset. Нулевой limit означает «без ограничения».
func Page(r *http.Request) (limit, offset int, err error) {
	if limit, err = Int(r, "limit"); err != nil {
		return 0, 0, err
	}
	if offset, err = Int(r, "offset"); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

// Flag сообщает, включён ли булев фильтр: "1" и "true" считаются включением.
func Flag(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "1", "true", "True":
		return true
	}
	return false
}

// Strings возвращает непустые значения повторяющегося параметра запроса.
// Пустые значения вроде "?tags=" отбрасываются, без значений возвращается nil.
func Strings(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
