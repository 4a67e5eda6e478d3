package dto

import (
	"github.com/mkondo/notes-api/internal/models"
)

// TagDTO represents a tag in API responses
type TagDTO struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	UsageCount int    `json:"usage_count"`
}

// ToTagDTO converts a Tag model to TagDTO
func ToTagDTO(tag models.Tag) TagDTO {
	return TagDTO{
		ID:         tag.ID,
		Name:       tag.Name,
		UsageCount: tag.UsageCount,
	}
}

// ToTagDTOs converts a slice of tags
func ToTagDTOs(tags []models.Tag) []TagDTO {
	dtos := make([]TagDTO, len(tags))
	for i, tag := range tags {
		dtos[i] = ToTagDTO(tag)
	}
	return dtos
}
