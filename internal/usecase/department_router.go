package usecase

import (
	"strings"

	"civicsolve/internal/domain/entity"
)

const (
	DepartmentElectricity = "Electricity"
	DepartmentPublicWorks = "PWD"
)

var electricityKeywords = []string{
	"electric", "power", "outage", "blackout", "street light", "streetlight",
	"transformer", "voltage", "wire", "wiring", "meter", "pole", "short circuit",
}

// KeywordRouter sends electrical issues to the Electricity department and everything else
// to Public Works.
type KeywordRouter struct{}

func NewKeywordRouter() *KeywordRouter {
	return &KeywordRouter{}
}

func (KeywordRouter) Route(complaint *entity.Complaint) string {
	if complaint.Category == entity.CategoryElectricity {
		return DepartmentElectricity
	}

	text := strings.ToLower(complaint.Title + " " + complaint.Description)
	for _, keyword := range electricityKeywords {
		if strings.Contains(text, keyword) {
			return DepartmentElectricity
		}
	}
	return DepartmentPublicWorks
}
