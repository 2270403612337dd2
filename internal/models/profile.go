package models

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID             uuid.UUID    `json:"id"`
	UserID         uuid.UUID    `json:"-"`
	User           ProfileUser  `json:"user"`
	Company        string       `json:"company,omitempty"`
	Website        string       `json:"website,omitempty"`
	Location       string       `json:"location,omitempty"`
	Status         string       `json:"status"`
	Skills         []string     `json:"skills"`
	Bio            string       `json:"bio,omitempty"`
	GithubUsername string       `json:"githubusername,omitempty"`
	Social         Social       `json:"social"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	CreatedAt      time.Time    `json:"date"`
}

// ProfileUser: то, что отдаём о владельце профиля наружу.
type ProfileUser struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar"`
}

type Social struct {
	Youtube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

type Experience struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

type Education struct {
	ID           uuid.UUID  `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

type ProfileRequest struct {
	Company        string   `json:"company"`
	Website        string   `json:"website"`
	Location       string   `json:"location"`
	Bio            string   `json:"bio"`
	Status         string   `json:"status"`
	GithubUsername string   `json:"githubusername"`
	Skills         []string `json:"skills"`
	Youtube        string   `json:"youtube"`
	Twitter        string   `json:"twitter"`
	Facebook       string   `json:"facebook"`
	Linkedin       string   `json:"linkedin"`
	Instagram      string   `json:"instagram"`
}

type ExperienceRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type EducationRequest struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

type ProfileFilter struct {
	Status   string
	Location string
	Skills   []string
	Page     int
	Limit    int
	Sort     string
}

// ProfileSeed: профиль из fixtures сидера.
type ProfileSeed struct {
	UserID uuid.UUID `json:"user"`
	ProfileRequest
}
