package model

// Teacher is a trainer in the static catalog.
type Teacher struct {
	ID        string `json:"id" yaml:"id"`
	Specialty string `json:"specialty" yaml:"specialty"`
}
