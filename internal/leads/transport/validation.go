package transport

import (
	"leadtracker_backend/internal/leads/domain"
	"leadtracker_backend/platform/validator"
)

// RegisterValidations adds the lead enum tags used by the request DTOs.
func RegisterValidations(val *validator.Validator) error {
	if err := val.RegisterOneOf("leadstatus", domain.StatusValues()); err != nil {
		return err
	}
	if err := val.RegisterOneOf("leadsource", domain.SourceValues()); err != nil {
		return err
	}
	return val.RegisterOneOf("leadpriority", domain.PriorityValues())
}
