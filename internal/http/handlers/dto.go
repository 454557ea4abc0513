package handlers

import (
	"time"

	"github.com/pribylovaa/smilecook/internal/models"
	"github.com/pribylovaa/smilecook/internal/service"
)

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registerRequest) input() service.RegisterInput {
	return service.RegisterInput{Username: r.Username, Email: r.Email, Password: r.Password}
}

// userResponse — представление пользователя. Email отдаётся только владельцу.
type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type authorResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// recipeRequest — тело POST/PATCH /recipes. Отсутствующее поле остаётся nil.
type recipeRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Ingredients   *string `json:"ingredients"`
	Directions    *string `json:"directions"`
	NumOfServings *int    `json:"num_of_servings"`
	CookTime      *int    `json:"cook_time"`
}

func (r recipeRequest) input() service.RecipeInput {
	return service.RecipeInput{
		Name:          r.Name,
		Description:   r.Description,
		Ingredients:   r.Ingredients,
		Directions:    r.Directions,
		NumOfServings: r.NumOfServings,
		CookTime:      r.CookTime,
	}
}

type recipeResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Ingredients   string          `json:"ingredients"`
	Directions    string          `json:"directions"`
	NumOfServings *int            `json:"num_of_servings"`
	CookTime      *int            `json:"cook_time"`
	IsPublish     bool            `json:"is_publish"`
	Author        *authorResponse `json:"author"`
	CoverURL      string          `json:"cover_url"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type avatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

type coverResponse struct {
	CoverURL string `json:"cover_url"`
}

func (h *Handlers) userFromModel(u *models.User, withEmail bool) userResponse {
	resp := userResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		AvatarURL: h.svc.AvatarURL(u.Avatar),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if withEmail {
		resp.Email = u.Email
	}

	return resp
}

func (h *Handlers) recipeFromModel(r *models.Recipe) recipeResponse {
	resp := recipeResponse{
		ID:            r.ID.String(),
		Name:          r.Name,
		Description:   r.Description,
		Ingredients:   r.Ingredients,
		Directions:    r.Directions,
		NumOfServings: r.NumOfServings,
		CookTime:      r.CookTime,
		IsPublish:     r.IsPublish,
		CoverURL:      h.svc.CoverURL(r.CoverImage),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}

	if r.Author != nil {
		resp.Author = &authorResponse{
			ID:        r.Author.ID.String(),
			Username:  r.Author.Username,
			AvatarURL: h.svc.AvatarURL(r.Author.Avatar),
			CreatedAt: r.Author.CreatedAt,
			UpdatedAt: r.Author.UpdatedAt,
		}
	}

	return resp
}

func (h *Handlers) recipesFromModel(items []*models.Recipe) []recipeResponse {
	out := make([]recipeResponse, 0, len(items))
	for _, r := range items {
		out = append(out, h.recipeFromModel(r))
	}

	return out
}
