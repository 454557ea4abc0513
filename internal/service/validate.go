package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Ограничения полей. Совпадают с ограничениями схемы БД (migrations/00001_init.sql).
const (
	maxUsernameLen    = 80
	maxEmailLen       = 200
	minPasswordLen    = 8
	maxRecipeNameLen  = 100
	maxDescriptionLen = 200
	maxIngredientsLen = 1000
	maxDirectionsLen  = 1000
	maxNumOfServings  = 50
	maxCookTime       = 300
)

const msgRequired = "Missing data for required field."

func maxLenMsg(n int) string { return fmt.Sprintf("Longer than maximum length %d.", n) }

// RegisterInput — данные регистрации.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// normalize обрезает пробелы и приводит email к нижнему регистру.
func (in RegisterInput) normalize() RegisterInput {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	return in
}

// validateRegister проверяет поля регистрации.
// Ожидает нормализованный вход.
func validateRegister(in RegisterInput) error {
	v := &ValidationError{}

	switch {
	case in.Username == "":
		v.add("username", msgRequired)
	case utf8.RuneCountInString(in.Username) > maxUsernameLen:
		v.add("username", maxLenMsg(maxUsernameLen))
	}

	switch {
	case in.Email == "":
		v.add("email", msgRequired)
	case utf8.RuneCountInString(in.Email) > maxEmailLen:
		v.add("email", maxLenMsg(maxEmailLen))
	case !validEmail(in.Email):
		v.add("email", "Not a valid email address.")
	}

	switch {
	case in.Password == "":
		v.add("password", msgRequired)
	case utf8.RuneCountInString(in.Password) < minPasswordLen:
		v.add("password", fmt.Sprintf("Shorter than minimum length %d.", minPasswordLen))
	}

	return v.orNil()
}

// validEmail принимает только «голый» адрес без отображаемого имени.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}

	return addr.Address == email
}

// RecipeInput — поля рецепта от клиента.
// nil означает «поле не передано».
type RecipeInput struct {
	Name          *string
	Description   *string
	Ingredients   *string
	Directions    *string
	NumOfServings *int
	CookTime      *int
}

// validateRecipe проверяет поля рецепта.
// При partial=false поле name обязательно.
func validateRecipe(in RecipeInput, partial bool) error {
	v := &ValidationError{}

	switch {
	case in.Name == nil:
		if !partial {
			v.add("name", msgRequired)
		}
	case strings.TrimSpace(*in.Name) == "":
		v.add("name", "Name must not be empty.")
	case utf8.RuneCountInString(strings.TrimSpace(*in.Name)) > maxRecipeNameLen:
		v.add("name", maxLenMsg(maxRecipeNameLen))
	}

	checkLen := func(field string, val *string, limit int) {
		if val != nil && utf8.RuneCountInString(*val) > limit {
			v.add(field, maxLenMsg(limit))
		}
	}
	checkLen("description", in.Description, maxDescriptionLen)
	checkLen("ingredients", in.Ingredients, maxIngredientsLen)
	checkLen("directions", in.Directions, maxDirectionsLen)

	if n := in.NumOfServings; n != nil {
		switch {
		case *n < 1:
			v.add("num_of_servings", "Number of servings must be greater than 0.")
		case *n > maxNumOfServings:
			v.add("num_of_servings", fmt.Sprintf("Number of servings must not be greater than %d.", maxNumOfServings))
		}
	}

	if n := in.CookTime; n != nil {
		switch {
		case *n < 1:
			v.add("cook_time", "Cook time must be greater than 0.")
		case *n > maxCookTime:
			v.add("cook_time", fmt.Sprintf("Cook time must not be greater than %d.", maxCookTime))
		}
	}

	return v.orNil()
}
