package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

var validate *validator.Validate

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

func init() {
	validate = validator.New()
}

// ParseDeliveryInput parses and validates a request body into a DeliveryInput.
func ParseDeliveryInput(data []byte) (*DeliveryInput, error) {
	var in DeliveryInput

	if err := jsonCodec.Unmarshal(data, &in); err != nil {
		return nil, &RelayError{
			Code:    ErrInvalidRequest,
			Message: fmt.Sprintf("failed to parse request body: %v", err),
		}
	}

	// Validate using struct tags
	if err := validate.Struct(&in); err != nil {
		return nil, &RelayError{
			Code:    ErrInvalidRequest,
			Message: fmt.Sprintf("validation failed: %v", err),
		}
	}

	return &in, nil
}
