package mockapi

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mealhub-dev/mealhub/internal/models"
)

// SeedAccount creates a provider account plus matching backend profile with
// the given role, as if the user had registered and been promoted.
func (s *Server) SeedAccount(email, password, name string, role models.Role) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = &account{
		UID:          newID(),
		Email:        email,
		DisplayName:  name,
		PasswordHash: hash,
	}
	profile := &models.Profile{
		Email:     email,
		Name:      name,
		Role:      role,
		Status:    models.StatusActive,
		CreatedAt: time.Now(),
	}
	if role == models.RoleChef {
		profile.ChefID = newID()
	}
	s.profiles[email] = profile
}

// SeedSocialToken registers an OAuth access token the social endpoint will
// accept for the given email.
func (s *Server) SeedSocialToken(token, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.socialTokens[token] = email
}

// SeedMeal publishes a meal owned by the given chef and returns its ID.
func (s *Server) SeedMeal(chefEmail, title, category string, price float64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	chef := s.profiles[chefEmail]
	meal := &models.Meal{
		ID:        newID(),
		Title:     title,
		Category:  category,
		Price:     price,
		Available: true,
		CreatedAt: time.Now(),
	}
	if chef != nil {
		meal.ChefID = chef.ChefID
		meal.ChefName = chef.Name
		meal.ChefEmail = chef.Email
	}
	s.meals[meal.ID] = meal
	return meal.ID
}

// SuspendAccount flips the backend profile to fraud status. Already issued
// tokens then start failing with 403, which is how clients learn about it.
func (s *Server) SuspendAccount(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if profile, ok := s.profiles[email]; ok {
		profile.Status = models.StatusFraud
	}
}
