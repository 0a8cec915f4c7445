package service

import (
	"fmt"
	"strings"

	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/entity"
)

const maxFieldLen = 512

func ValidateClient(client entity.Client) error {
	if strings.TrimSpace(client.Name) == "" {
		return fmt.Errorf("%w: client name is required", entity.ErrInvalidInput)
	}

	if strings.TrimSpace(client.PriceSheetLink) == "" {
		return fmt.Errorf("%w: price sheet link is required", entity.ErrInvalidInput)
	}

	if strings.TrimSpace(client.CustomerNumber) == "" {
		return fmt.Errorf("%w: customer number is required", entity.ErrInvalidInput)
	}

	for field, value := range map[string]string{
		"name":           client.Name,
		"priceSheetLink": client.PriceSheetLink,
		"customerNumber": client.CustomerNumber,
	} {
		if len(value) > maxFieldLen {
			return fmt.Errorf("%w: %s exceeds %d characters", entity.ErrInvalidInput, field, maxFieldLen)
		}
	}

	return nil
}
