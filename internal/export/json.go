package export

import (
	"github.com/intentiq/intentiq/internal/domain"
)

// JSON renders leads as an indented JSON array. A nil lead set renders as [].
func JSON(leads []domain.Lead) ([]byte, error) {
	if leads == nil {
		leads = []domain.Lead{}
	}
	return jsonValue(leads)
}
