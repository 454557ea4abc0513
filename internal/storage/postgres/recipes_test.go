package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/pribylovaa/smilecook/internal/models"
	"github.com/pribylovaa/smilecook/internal/storage"
	"github.com/stretchr/testify/require"
)

var recipeCols = []string{
	"id", "user_id", "name", "description", "ingredients", "directions",
	"num_of_servings", "cook_time", "is_publish", "cover_image", "created_at", "updated_at",
	"author_id", "username", "avatar_image", "author_created_at", "author_updated_at",
}

var listTxOptions = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

func intPtr(v int) *int { return &v }

func recipeRow(rows *pgxmock.Rows, r *models.Recipe) *pgxmock.Rows {
	return rows.AddRow(
		r.ID, r.UserID, r.Name, r.Description, r.Ingredients, r.Directions,
		r.NumOfServings, r.CookTime, r.IsPublish, r.CoverImage, r.CreatedAt, r.UpdatedAt,
		r.UserID, "jack", "", r.CreatedAt, r.CreatedAt,
	)
}

func sampleRecipe() *models.Recipe {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	return &models.Recipe{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Name:          "Borscht",
		Description:   "Beet soup",
		Ingredients:   "beets",
		Directions:    "boil",
		NumOfServings: intPtr(4),
		CookTime:      intPtr(90),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestCreateRecipe_OK(t *testing.T) {
	st, mock := newMockStorage(t)
	r := sampleRecipe()

	mock.ExpectQuery(`INSERT INTO recipes`).
		WithArgs(r.ID, r.UserID, r.Name, r.Description, r.Ingredients, r.Directions,
			r.NumOfServings, r.CookTime, false, "").
		WillReturnRows(recipeRow(pgxmock.NewRows(recipeCols), r))

	got, err := st.CreateRecipe(context.Background(), r)
	require.NoError(t, err)
	require.Equal(t, r.ID, got.ID)
	require.Equal(t, 4, *got.NumOfServings)
	require.NotNil(t, got.Author)
	require.Equal(t, "jack", got.Author.Username)
	require.Equal(t, r.UserID, got.Author.ID)
}

func TestCreateRecipe_UnknownOwner(t *testing.T) {
	st, mock := newMockStorage(t)
	r := sampleRecipe()

	mock.ExpectQuery(`INSERT INTO recipes`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := st.CreateRecipe(context.Background(), r)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRecipeByID_OK_And_NotFound(t *testing.T) {
	st, mock := newMockStorage(t)
	r := sampleRecipe()
	r.NumOfServings = nil

	mock.ExpectQuery(`FROM recipes r JOIN users u ON u.id = r.user_id WHERE r.id = \$1`).
		WithArgs(r.ID).
		WillReturnRows(recipeRow(pgxmock.NewRows(recipeCols), r))

	got, err := st.RecipeByID(context.Background(), r.ID)
	require.NoError(t, err)
	require.Equal(t, "Borscht", got.Name)
	require.Nil(t, got.NumOfServings)
	require.Equal(t, 90, *got.CookTime)

	mock.ExpectQuery(`WHERE r.id = \$1`).
		WithArgs(r.ID).
		WillReturnError(pgx.ErrNoRows)

	_, err = st.RecipeByID(context.Background(), r.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateRecipe_Partial_BuildsOnlyProvidedSets(t *testing.T) {
	st, mock := newMockStorage(t)
	r := sampleRecipe()
	name := "Borscht v2"
	publish := true
	r.Name = name
	r.IsPublish = publish

	mock.ExpectQuery(`UPDATE recipes SET updated_at = now\(\), name = \$2, is_publish = \$3 WHERE id = \$1 RETURNING \*`).
		WithArgs(r.ID, name, publish).
		WillReturnRows(recipeRow(pgxmock.NewRows(recipeCols), r))

	got, err := st.UpdateRecipe(context.Background(), r.ID, storage.RecipeUpdate{Name: &name, IsPublish: &publish})
	require.NoError(t, err)
	require.Equal(t, name, got.Name)
	require.True(t, got.IsPublish)
}

func TestUpdateRecipe_NotFound(t *testing.T) {
	st, mock := newMockStorage(t)
	id := uuid.New()

	mock.ExpectQuery(`UPDATE recipes SET updated_at = now\(\) WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := st.UpdateRecipe(context.Background(), id, storage.RecipeUpdate{})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteRecipe(t *testing.T) {
	st, mock := newMockStorage(t)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM recipes WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, st.DeleteRecipe(context.Background(), id))

	mock.ExpectExec(`DELETE FROM recipes WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, st.DeleteRecipe(context.Background(), id), storage.ErrNotFound)
}

func TestListRecipes_PublishedSearch_CountAndPageInOneTx(t *testing.T) {
	st, mock := newMockStorage(t)
	r := sampleRecipe()
	r.IsPublish = true
	published := true

	mock.ExpectBeginTx(listTxOptions)
	mock.ExpectQuery(`SELECT count\(\*\) FROM recipes r WHERE TRUE AND r.is_publish = \$1 AND r.name ILIKE \$2 ESCAPE`).
		WithArgs(true, `%50\%\_off%`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery(`ORDER BY r.cook_time ASC, r.id ASC LIMIT \$3 OFFSET \$4`).
		WithArgs(true, `%50\%\_off%`, 20, 20).
		WillReturnRows(recipeRow(pgxmock.NewRows(recipeCols), r))
	mock.ExpectCommit()

	page, err := st.ListRecipes(context.Background(), storage.RecipeFilter{
		Published: &published,
		Query:     "50%_off",
		Sort:      models.SortCookTime,
		Order:     models.OrderAsc,
		Limit:     20,
		Offset:    20,
	})
	require.NoError(t, err)
	require.Equal(t, 21, page.Total)
	require.Len(t, page.Items, 1)
	require.Equal(t, r.ID, page.Items[0].ID)
}

func TestListRecipes_Owner_DefaultSort_SkipsPageWhenOutOfRange(t *testing.T) {
	st, mock := newMockStorage(t)
	owner := uuid.New()

	mock.ExpectBeginTx(listTxOptions)
	mock.ExpectQuery(`SELECT count\(\*\) FROM recipes r WHERE TRUE AND r.user_id = \$1$`).
		WithArgs(owner).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectCommit()

	page, err := st.ListRecipes(context.Background(), storage.RecipeFilter{
		OwnerID: &owner,
		Limit:   10,
		Offset:  10,
	})
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Empty(t, page.Items)
}

func TestListRecipes_Owner_UnknownSortFallsBackToCreatedAtDesc(t *testing.T) {
	st, mock := newMockStorage(t)
	owner := uuid.New()
	r := sampleRecipe()

	mock.ExpectBeginTx(listTxOptions)
	mock.ExpectQuery(`SELECT count\(\*\)`).
		WithArgs(owner).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY r.created_at DESC, r.id DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(owner, 10, 0).
		WillReturnRows(recipeRow(pgxmock.NewRows(recipeCols), r))
	mock.ExpectCommit()

	page, err := st.ListRecipes(context.Background(), storage.RecipeFilter{
		OwnerID: &owner,
		Sort:    models.SortField("name; DROP TABLE recipes"),
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}

func TestListRecipes_CountError_RollsBack(t *testing.T) {
	st, mock := newMockStorage(t)

	mock.ExpectBeginTx(listTxOptions)
	mock.ExpectQuery(`SELECT count\(\*\)`).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := st.ListRecipes(context.Background(), storage.RecipeFilter{Limit: 10})
	require.Error(t, err)
	require.Contains(t, err.Error(), "count")
}

func TestListRecipes_BeginError(t *testing.T) {
	st, mock := newMockStorage(t)

	mock.ExpectBeginTx(listTxOptions).WillReturnError(errors.New("no conn"))

	_, err := st.ListRecipes(context.Background(), storage.RecipeFilter{Limit: 10})
	require.Error(t, err)
	require.Contains(t, err.Error(), "begin")
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	require.Equal(t, `soup`, escapeLike("soup"))
	require.Equal(t, `100\%`, escapeLike("100%"))
	require.Equal(t, `a\_b`, escapeLike("a_b"))
	require.Equal(t, `c:\\x`, escapeLike(`c:\x`))
}
