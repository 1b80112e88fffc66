package create_reservation

import (
	"fmt"
)

// validateRequest валидирует входные данные запроса
// Верхняя граница размера группы проверяется политикой допуска, а не здесь.
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.Branch == "" {
		return fmt.Errorf("%w: branch is required", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.TimeSlot == "" {
		return fmt.Errorf("%w: timeSlot is required", ErrInvalidInput)
	}

	if req.Adults < 1 {
		return fmt.Errorf("%w: at least one adult is required", ErrInvalidInput)
	}

	if req.Children < 0 {
		return fmt.Errorf("%w: children must not be negative", ErrInvalidInput)
	}

	return nil
}
