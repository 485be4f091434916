// Package shopping собирает список покупок из рецептов корзины пользователя.
package shopping

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/magabrotheeeer/foodgram/internal/metrics"
	"github.com/magabrotheeeer/foodgram/internal/models"
)

// Имя и тип содержимого выгружаемого файла.
const (
	FileName    = "shopping_cart.txt"
	ContentType = "text/plain; charset=utf-8"
)

// Repository возвращает суммы ингредиентов корзины, сгруппированные по названию и единице.
type Repository interface {
	ShoppingList(ctx context.Context, userID int64) ([]models.ShoppingItem, error)
}

// Service формирует документ списка покупок.
type Service struct {
	repo Repository
}

// New создаёт сервис списка покупок.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Document возвращает список покупок одной строкой на пару (название, единица).
// Пустая корзина даёт пустой документ.
func (s *Service) Document(ctx context.Context, ident models.Identity) ([]byte, error) {
	const op = "shopping.Document"
	if ident.IsAnonymous() {
		return nil, models.Unauthorized()
	}

	items, err := s.repo.ShoppingList(ctx, ident.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.RecordShoppingDownload()
	return Render(items), nil
}

// Render сортирует позиции по названию с учётом русского алфавита, затем по единице,
// и выводит каждую строкой "• {name} ({unit}) — {amount}".
func Render(items []models.ShoppingItem) []byte {
	if len(items) == 0 {
		return []byte{}
	}

	sorted := make([]models.ShoppingItem, len(items))
	copy(sorted, items)
	col := collate.New(language.Russian, collate.IgnoreCase)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := col.CompareString(sorted[i].Name, sorted[j].Name); c != 0 {
			return c < 0
		}
		return col.CompareString(sorted[i].MeasurementUnit, sorted[j].MeasurementUnit) < 0
	})

	var buf bytes.Buffer
	for _, it := range sorted {
		fmt.Fprintf(&buf, "• %s (%s) — %d\n", it.Name, it.MeasurementUnit, it.Amount)
	}
	return buf.Bytes()
}
