package model

import "time"

// Profile is the one-per-user profile document. User is joined from the
// users collection on every read and is not stored with the profile.
type Profile struct {
	ID             string       `json:"id"`
	UserID         string       `json:"-"`
	User           Author       `json:"user"`
	Company        string       `json:"company,omitempty"`
	Website        string       `json:"website,omitempty"`
	Location       string       `json:"location,omitempty"`
	Bio            string       `json:"bio,omitempty"`
	Status         string       `json:"status,omitempty"`
	GitHubUsername string       `json:"githubusername,omitempty"`
	Skills         []string     `json:"skills"`
	Social         *Social      `json:"social,omitempty"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	CreatedAt      time.Time    `json:"date"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// Social holds the optional platform links of a profile.
type Social struct {
	YouTube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// IsZero reports whether no link is set.
func (s Social) IsZero() bool {
	return s == Social{}
}

// Experience is one entry of a profile's work history. ID is the sub-id
// assigned on insertion.
type Experience struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

// Education is one entry of a profile's education history.
type Education struct {
	ID           string     `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

// RemoveExperience drops the experience entry with the given sub-id and
// reports whether one was removed.
func (p *Profile) RemoveExperience(id string) bool {
	for i := range p.Experience {
		if p.Experience[i].ID == id {
			p.Experience = removeAt(p.Experience, i)
			return true
		}
	}
	return false
}

// RemoveEducation drops the education entry with the given sub-id and
// reports whether one was removed.
func (p *Profile) RemoveEducation(id string) bool {
	for i := range p.Education {
		if p.Education[i].ID == id {
			p.Education = removeAt(p.Education, i)
			return true
		}
	}
	return false
}
