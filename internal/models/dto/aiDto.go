package dto

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexibleStringSlice — тип, который при десериализации принимает как строку, так и массив строк.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*f = arr
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "" {
			*f = []string{s}
		} else {
			*f = nil
		}
		return nil
	}

	return fmt.Errorf("hashtags: expected string or []string, got %s", string(data))
}

// DraftResponseSchema — структурированный ответ AI с черновиком описания турнира.
type DraftResponseSchema struct {
	Description string              `json:"description" description:"Описание турнира для поста, 2-4 предложения на русском языке"`
	Hashtags    FlexibleStringSlice `json:"hashtags" description:"Хэштеги турнира без символа #"`
}

// Text собирает описание для поста: текст и строка хэштегов.
func (d DraftResponseSchema) Text() string {
	description := strings.TrimSpace(d.Description)

	var tags []string
	for _, tag := range d.Hashtags {
		tag = strings.ReplaceAll(strings.TrimSpace(tag), " ", "")
		tag = strings.TrimPrefix(tag, "#")
		if tag == "" {
			continue
		}
		tags = append(tags, "#"+tag)
	}

	if len(tags) == 0 {
		return description
	}
	if description == "" {
		return strings.Join(tags, " ")
	}
	return description + "\n\n" + strings.Join(tags, " ")
}
