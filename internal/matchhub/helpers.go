package matchhub

import (
	"encoding/json"
	"errors"
)

type envelope map[string]any

var ErrNoValueForKey = errors.New("no value found for key")
var ErrValueNotAsserted = errors.New("value could not be asserted to specified type")

func (h *Hub) toByteArr(data envelope) []byte {
	bytes, err := json.Marshal(data)
	if err != nil {
		h.logger.PrintError(err, nil)
		return []byte(`{}`)
	}
	return bytes
}

func checkAndAssertStringFromMap(src map[string]any, key string) (string, error) {
	data, ok := src[key]
	if !ok {
		return "", ErrNoValueForKey
	}
	value, ok := data.(string)
	if !ok {
		return "", ErrValueNotAsserted
	}

	return value, nil
}

func checkAndAssertIntFromMap(src map[string]any, key string) (int64, error) {
	data, ok := src[key]
	if !ok {
		return 0, ErrNoValueForKey
	}
	value, ok := data.(float64)
	if !ok {
		return 0, ErrValueNotAsserted
	}

	return int64(value), nil
}

func checkAndAssertBoolFromMap(src map[string]any, key string) (bool, error) {
	data, ok := src[key]
	if !ok {
		return false, ErrNoValueForKey
	}
	value, ok := data.(bool)
	if !ok {
		return false, ErrValueNotAsserted
	}

	return value, nil
}
