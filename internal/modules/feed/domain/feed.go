package domain

// Meta describes the lecture feed channel
type Meta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author"`
}

// DefaultMeta is used when no channel metadata is configured
var DefaultMeta = Meta{
	Title:       "Лекції з фотограмметрії",
	Description: "Нові матеріали лекцій",
	Author:      "Lecture bot",
}
