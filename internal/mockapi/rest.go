package mockapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mealhub-dev/mealhub/internal/models"
)

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"message": what + " not found"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msg})
}

// --- users ---

func (s *Server) handleCreateUser(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		PhotoURL string `json:"photoURL"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		badRequest(c, "email is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.profiles[req.Email]; ok {
		c.JSON(http.StatusOK, existing)
		return
	}
	profile := &models.Profile{
		Email:     req.Email,
		Name:      req.Name,
		PhotoURL:  req.PhotoURL,
		Role:      models.RoleUser,
		Status:    models.StatusActive,
		CreatedAt: time.Now(),
	}
	s.profiles[req.Email] = profile
	c.JSON(http.StatusCreated, profile)
}

func (s *Server) handleGetUser(c *gin.Context) {
	email := c.Param("email")
	who := caller(c)
	if who.Email != email && who.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "insufficient role"})
		return
	}

	s.mu.Lock()
	profile, ok := s.profiles[email]
	s.mu.Unlock()
	if !ok {
		notFound(c, "user")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleListUsers(c *gin.Context) {
	if !requireRole(c, models.RoleAdmin) {
		return
	}
	s.mu.Lock()
	users := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		users = append(users, *p)
	}
	s.mu.Unlock()
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	c.JSON(http.StatusOK, users)
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	email := c.Param("email")
	who := caller(c)

	var req struct {
		Name     *string               `json:"name"`
		PhotoURL *string               `json:"photoURL"`
		Status   *models.AccountStatus `json:"status"`
		Role     *models.Role          `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	// Role and status changes are admin-only; name and photo may be changed
	// by the owner.
	if req.Status != nil || req.Role != nil {
		if who.Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"message": "insufficient role"})
			return
		}
	} else if who.Email != email && who.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "insufficient role"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[email]
	if !ok {
		notFound(c, "user")
		return
	}
	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.PhotoURL != nil {
		profile.PhotoURL = *req.PhotoURL
	}
	if req.Status != nil {
		profile.Status = *req.Status
	}
	if req.Role != nil {
		profile.Role = *req.Role
		if *req.Role == models.RoleChef && profile.ChefID == "" {
			profile.ChefID = newID()
		}
	}
	c.JSON(http.StatusOK, profile)
}

// --- meals ---

func (s *Server) handleListMeals(c *gin.Context) {
	search := strings.ToLower(c.Query("search"))
	category := c.Query("category")
	sortBy := c.Query("sort")
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	s.mu.Lock()
	meals := make([]models.Meal, 0, len(s.meals))
	for _, m := range s.meals {
		if search != "" &&
			!strings.Contains(strings.ToLower(m.Title), search) &&
			!strings.Contains(strings.ToLower(m.Description), search) {
			continue
		}
		if category != "" && m.Category != category {
			continue
		}
		meals = append(meals, *m)
	}
	s.mu.Unlock()

	switch sortBy {
	case "price-asc":
		sort.Slice(meals, func(i, j int) bool { return meals[i].Price < meals[j].Price })
	case "price-desc":
		sort.Slice(meals, func(i, j int) bool { return meals[i].Price > meals[j].Price })
	case "rating":
		sort.Slice(meals, func(i, j int) bool { return meals[i].Rating > meals[j].Rating })
	default:
		sort.Slice(meals, func(i, j int) bool { return meals[i].ID < meals[j].ID })
	}

	total := len(meals)
	if limit > 0 {
		start := 0
		if page > 1 {
			start = (page - 1) * limit
		}
		if start > total {
			start = total
		}
		end := start + limit
		if end > total {
			end = total
		}
		meals = meals[start:end]
	}

	c.JSON(http.StatusOK, gin.H{"meals": meals, "total": total})
}

func (s *Server) handleGetMeal(c *gin.Context) {
	s.mu.Lock()
	meal, ok := s.meals[c.Param("id")]
	s.mu.Unlock()
	if !ok {
		notFound(c, "meal")
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (s *Server) handleMealsByChef(c *gin.Context) {
	email := c.Param("email")
	s.mu.Lock()
	meals := make([]models.Meal, 0)
	for _, m := range s.meals {
		if m.ChefEmail == email {
			meals = append(meals, *m)
		}
	}
	s.mu.Unlock()
	sort.Slice(meals, func(i, j int) bool { return meals[i].ID < meals[j].ID })
	c.JSON(http.StatusOK, meals)
}

type mealInput struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"image"`
	Price        float64 `json:"price"`
	Category     string  `json:"category"`
	Available    bool    `json:"available"`
	DeliveryArea string  `json:"deliveryArea"`
}

func (s *Server) handleCreateMeal(c *gin.Context) {
	if !requireRole(c, models.RoleChef) {
		return
	}
	var req mealInput
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" || req.Price <= 0 {
		badRequest(c, "title and a positive price are required")
		return
	}

	who := caller(c)
	meal := &models.Meal{
		ID:           newID(),
		Title:        req.Title,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		Price:        req.Price,
		Category:     req.Category,
		ChefID:       who.ChefID,
		ChefName:     who.Name,
		ChefEmail:    who.Email,
		Available:    req.Available,
		DeliveryArea: req.DeliveryArea,
		CreatedAt:    time.Now(),
	}
	s.mu.Lock()
	s.meals[meal.ID] = meal
	s.mu.Unlock()
	c.JSON(http.StatusCreated, meal)
}

func (s *Server) handleUpdateMeal(c *gin.Context) {
	if !requireRole(c, models.RoleChef) {
		return
	}
	var req mealInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	meal, ok := s.meals[c.Param("id")]
	if !ok {
		notFound(c, "meal")
		return
	}
	if meal.ChefEmail != caller(c).Email {
		c.JSON(http.StatusForbidden, gin.H{"message": "not your meal"})
		return
	}
	meal.Title = req.Title
	meal.Description = req.Description
	meal.ImageURL = req.ImageURL
	meal.Price = req.Price
	meal.Category = req.Category
	meal.Available = req.Available
	meal.DeliveryArea = req.DeliveryArea
	c.JSON(http.StatusOK, meal)
}

func (s *Server) handleDeleteMeal(c *gin.Context) {
	who := caller(c)
	if who.Role != models.RoleChef && who.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "insufficient role"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	meal, ok := s.meals[c.Param("id")]
	if !ok {
		notFound(c, "meal")
		return
	}
	if who.Role == models.RoleChef && meal.ChefEmail != who.Email {
		c.JSON(http.StatusForbidden, gin.H{"message": "not your meal"})
		return
	}
	delete(s.meals, meal.ID)
	c.Status(http.StatusNoContent)
}

// --- orders ---

func (s *Server) handleCreateOrder(c *gin.Context) {
	var req struct {
		MealID   string `json:"mealId"`
		Quantity int    `json:"quantity"`
		Address  string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.MealID == "" {
		badRequest(c, "mealId is required")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	who := caller(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	meal, ok := s.meals[req.MealID]
	if !ok {
		notFound(c, "meal")
		return
	}
	if !meal.Available {
		badRequest(c, "meal is not available")
		return
	}

	order := &models.Order{
		ID:         newID(),
		MealID:     meal.ID,
		MealTitle:  meal.Title,
		ChefID:     meal.ChefID,
		UserEmail:  who.Email,
		UserName:   who.Name,
		Quantity:   req.Quantity,
		Price:      meal.Price * float64(req.Quantity),
		Address:    req.Address,
		Status:     models.OrderPending,
		PaymentRef: "cs_" + newID(),
		CreatedAt:  time.Now(),
	}
	s.orders[order.ID] = order

	c.JSON(http.StatusCreated, gin.H{
		"order":      order,
		"paymentUrl": "https://pay.mealhub.test/session/" + order.PaymentRef,
	})
}

func (s *Server) handleOrdersByUser(c *gin.Context) {
	email := c.Param("email")
	who := caller(c)
	if who.Email != email && who.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "insufficient role"})
		return
	}

	s.mu.Lock()
	orders := make([]models.Order, 0)
	for _, o := range s.orders {
		if o.UserEmail == email {
			orders = append(orders, *o)
		}
	}
	s.mu.Unlock()
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	c.JSON(http.StatusOK, orders)
}

func (s *Server) handleOrdersByChef(c *gin.Context) {
	chefID := c.Param("chefId")
	who := caller(c)
	if who.ChefID != chefID && who.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "insufficient role"})
		return
	}

	s.mu.Lock()
	orders := make([]models.Order, 0)
	for _, o := range s.orders {
		if o.ChefID == chefID {
			orders = append(orders, *o)
		}
	}
	s.mu.Unlock()
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	c.JSON(http.StatusOK, orders)
}

func (s *Server) handleUpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	switch req.Status {
	case models.OrderPreparing, models.OrderDelivered, models.OrderCancelled:
	default:
		badRequest(c, "invalid status transition")
		return
	}

	who := caller(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[c.Param("id")]
	if !ok {
		notFound(c, "order")
		return
	}
	if who.Role == models.RoleChef && order.ChefID != who.ChefID {
		c.JSON(http.StatusForbidden, gin.H{"message": "not your order"})
		return
	}
	if who.Role == models.RoleUser {
		c.JSON(http.StatusForbidden, gin.H{"message": "insufficient role"})
		return
	}
	order.Status = req.Status
	c.JSON(http.StatusOK, order)
}

func (s *Server) handlePaymentSuccess(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		badRequest(c, "session_id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.orders {
		if order.PaymentRef == sessionID {
			order.Status = models.OrderPaid
			c.JSON(http.StatusOK, order)
			return
		}
	}
	notFound(c, "payment session")
}

// --- reviews ---

func (s *Server) handleReviewsByMeal(c *gin.Context) {
	mealID := c.Param("mealId")
	s.mu.Lock()
	reviews := make([]models.Review, 0)
	for _, r := range s.reviews {
		if r.MealID == mealID {
			reviews = append(reviews, *r)
		}
	}
	s.mu.Unlock()
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].ID < reviews[j].ID })
	c.JSON(http.StatusOK, reviews)
}

func (s *Server) handleReviewsByUser(c *gin.Context) {
	email := c.Param("email")
	who := caller(c)
	if who.Email != email && who.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "insufficient role"})
		return
	}

	s.mu.Lock()
	reviews := make([]models.Review, 0)
	for _, r := range s.reviews {
		if r.UserEmail == email {
			reviews = append(reviews, *r)
		}
	}
	s.mu.Unlock()
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].ID < reviews[j].ID })
	c.JSON(http.StatusOK, reviews)
}

type reviewInput struct {
	MealID  string `json:"mealId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Server) handleCreateReview(c *gin.Context) {
	var req reviewInput
	if err := c.ShouldBindJSON(&req); err != nil || req.Rating < 1 || req.Rating > 5 {
		badRequest(c, "rating must be between 1 and 5")
		return
	}

	who := caller(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	meal, ok := s.meals[req.MealID]
	if !ok {
		notFound(c, "meal")
		return
	}

	review := &models.Review{
		ID:        newID(),
		MealID:    meal.ID,
		UserEmail: who.Email,
		UserName:  who.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}
	s.reviews[review.ID] = review
	s.recalcRatingLocked(meal)
	c.JSON(http.StatusCreated, review)
}

func (s *Server) handleUpdateReview(c *gin.Context) {
	var req reviewInput
	if err := c.ShouldBindJSON(&req); err != nil || req.Rating < 1 || req.Rating > 5 {
		badRequest(c, "rating must be between 1 and 5")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	review, ok := s.reviews[c.Param("id")]
	if !ok {
		notFound(c, "review")
		return
	}
	if review.UserEmail != caller(c).Email {
		c.JSON(http.StatusForbidden, gin.H{"message": "not your review"})
		return
	}
	review.Rating = req.Rating
	review.Comment = req.Comment
	if meal, ok := s.meals[review.MealID]; ok {
		s.recalcRatingLocked(meal)
	}
	c.JSON(http.StatusOK, review)
}

func (s *Server) handleDeleteReview(c *gin.Context) {
	who := caller(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	review, ok := s.reviews[c.Param("id")]
	if !ok {
		notFound(c, "review")
		return
	}
	if review.UserEmail != who.Email && who.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "not your review"})
		return
	}
	delete(s.reviews, review.ID)
	if meal, ok := s.meals[review.MealID]; ok {
		s.recalcRatingLocked(meal)
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) recalcRatingLocked(meal *models.Meal) {
	var sum, count int
	for _, r := range s.reviews {
		if r.MealID == meal.ID {
			sum += r.Rating
			count++
		}
	}
	meal.ReviewCount = count
	if count == 0 {
		meal.Rating = 0
		return
	}
	meal.Rating = float64(sum) / float64(count)
}

// --- favorites ---

func (s *Server) handleFavorites(c *gin.Context) {
	who := caller(c)
	s.mu.Lock()
	favorites := make([]models.Favorite, 0)
	for _, f := range s.favorites {
		if f.UserEmail == who.Email {
			favorites = append(favorites, *f)
		}
	}
	s.mu.Unlock()
	sort.Slice(favorites, func(i, j int) bool { return favorites[i].ID < favorites[j].ID })
	c.JSON(http.StatusOK, favorites)
}

func (s *Server) handleAddFavorite(c *gin.Context) {
	var req struct {
		MealID string `json:"mealId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.MealID == "" {
		badRequest(c, "mealId is required")
		return
	}

	who := caller(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	meal, ok := s.meals[req.MealID]
	if !ok {
		notFound(c, "meal")
		return
	}
	for _, f := range s.favorites {
		if f.UserEmail == who.Email && f.MealID == meal.ID {
			c.JSON(http.StatusOK, f)
			return
		}
	}
	favorite := &models.Favorite{
		ID:        newID(),
		MealID:    meal.ID,
		MealTitle: meal.Title,
		UserEmail: who.Email,
		CreatedAt: time.Now(),
	}
	s.favorites[favorite.ID] = favorite
	c.JSON(http.StatusCreated, favorite)
}

func (s *Server) handleRemoveFavorite(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	favorite, ok := s.favorites[c.Param("id")]
	if !ok {
		notFound(c, "favorite")
		return
	}
	if favorite.UserEmail != caller(c).Email {
		c.JSON(http.StatusForbidden, gin.H{"message": "not your favorite"})
		return
	}
	delete(s.favorites, favorite.ID)
	c.Status(http.StatusNoContent)
}

// --- role requests and admin ---

func (s *Server) handleRoleRequests(c *gin.Context) {
	who := caller(c)
	s.mu.Lock()
	requests := make([]models.RoleRequest, 0)
	for _, r := range s.roleRequests {
		if who.Role == models.RoleAdmin || r.UserEmail == who.Email {
			requests = append(requests, *r)
		}
	}
	s.mu.Unlock()
	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })
	c.JSON(http.StatusOK, requests)
}

func (s *Server) handleCreateRoleRequest(c *gin.Context) {
	var req struct {
		TargetRole models.Role `json:"requestedRole"`
		Reason     string      `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	if req.TargetRole != models.RoleChef && req.TargetRole != models.RoleAdmin {
		badRequest(c, "requestedRole must be chef or admin")
		return
	}

	who := caller(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.roleRequests[who.Email]; ok && existing.State == models.RequestPending {
		badRequest(c, "a role request is already pending")
		return
	}
	request := &models.RoleRequest{
		ID:         newID(),
		UserEmail:  who.Email,
		UserName:   who.Name,
		TargetRole: req.TargetRole,
		Reason:     req.Reason,
		State:      models.RequestPending,
		CreatedAt:  time.Now(),
	}
	s.roleRequests[who.Email] = request

	if profile, ok := s.profiles[who.Email]; ok {
		switch req.TargetRole {
		case models.RoleChef:
			profile.ChefRequest = models.RequestPending
		case models.RoleAdmin:
			profile.AdminRequest = models.RequestPending
		}
	}
	c.JSON(http.StatusCreated, request)
}

func (s *Server) handleResolveRoleRequest(c *gin.Context) {
	if !requireRole(c, models.RoleAdmin) {
		return
	}
	var req struct {
		Status models.RequestState `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	if req.Status != models.RequestApproved && req.Status != models.RequestRejected {
		badRequest(c, "status must be approved or rejected")
		return
	}

	email := c.Param("email")
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.roleRequests[email]
	if !ok || request.State != models.RequestPending {
		notFound(c, "pending role request")
		return
	}
	request.State = req.Status

	profile := s.profiles[email]
	if profile != nil {
		switch request.TargetRole {
		case models.RoleChef:
			profile.ChefRequest = req.Status
		case models.RoleAdmin:
			profile.AdminRequest = req.Status
		}
		if req.Status == models.RequestApproved {
			profile.Role = request.TargetRole
			if request.TargetRole == models.RoleChef && profile.ChefID == "" {
				profile.ChefID = newID()
			}
		}
	}
	c.JSON(http.StatusOK, request)
}

func (s *Server) handlePlatformStats(c *gin.Context) {
	if !requireRole(c, models.RoleAdmin) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stats := models.PlatformStats{
		TotalUsers: len(s.profiles),
		TotalMeals: len(s.meals),
	}
	for _, p := range s.profiles {
		if p.Role == models.RoleChef {
			stats.TotalChefs++
		}
	}
	for _, o := range s.orders {
		stats.TotalOrders++
		switch o.Status {
		case models.OrderPending:
			stats.PendingOrders++
		case models.OrderPaid, models.OrderPreparing, models.OrderDelivered:
			stats.TotalRevenue += o.Price
		}
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleLogout(c *gin.Context) {
	// The session itself lives in the identity provider; the backend only
	// acknowledges so clients can fire-and-forget.
	c.JSON(http.StatusOK, gin.H{})
}
