package recipes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"recipebook/models"
	"recipebook/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formRequest(t *testing.T, method string, values url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, "/recipes", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.NoError(t, req.ParseForm())
	return req
}

func TestPatchFromForm(t *testing.T) {
	req := formRequest(t, http.MethodPut, url.Values{
		"title":         {" Dal "},
		"ingredients[]": {"lentils", " ", "salt"},
		"steps":         {"boil"},
		"cuisine":       {"Indian"},
		"cooking_time":  {"25"},
	})

	p, err := patchFromForm(req)
	require.NoError(t, err)
	require.NotNil(t, p.Title)
	assert.Equal(t, "Dal", *p.Title)
	assert.Equal(t, []string{"lentils", "salt"}, *p.Ingredients)
	assert.Equal(t, []string{"boil"}, *p.Steps)
	assert.Equal(t, models.CuisineIndian, *p.Cuisine)
	assert.Equal(t, 25, *p.CookingTime)
	assert.Nil(t, p.Description)
	assert.Nil(t, p.Difficulty)
	assert.Nil(t, p.ImageURL)
}

func TestPatchFromForm_BadCookingTime(t *testing.T) {
	req := formRequest(t, http.MethodPut, url.Values{"cooking_time": {"soon"}})
	_, err := patchFromForm(req)
	assert.Error(t, err)
}

func newHandlerFixture(t *testing.T) (*Handler, *fixture) {
	f := newFixture(t)
	return NewHandler(f.svc, nil, 1<<20), f
}

func serve(h httprouter.Handle, req *http.Request, user *models.User, ps httprouter.Params) *httptest.ResponseRecorder {
	if user != nil {
		req = req.WithContext(utils.WithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	h(rec, req, ps)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateRecipe_Multipart(t *testing.T) {
	h, f := newHandlerFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Dal"))
	require.NoError(t, mw.WriteField("ingredients[]", "lentils"))
	require.NoError(t, mw.WriteField("ingredients[]", "salt"))
	require.NoError(t, mw.WriteField("difficulty", "Medium"))
	fw, err := mw.CreateFormFile("image", "dal.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("pretend image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/recipes", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := serve(h.CreateRecipe, req, f.alice, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Recipe added successfully", body["message"])
	assert.NotEmpty(t, body["recipe_id"])

	views, err := f.svc.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, []string{"lentils", "salt"}, views[0].Ingredients)
	assert.Equal(t, models.DifficultyMedium, views[0].Difficulty)
	assert.Equal(t, "/uploads/alice_dal.txt", views[0].ImageURL)
}

func TestCreateRecipe_JSONMissingTitle(t *testing.T) {
	h, f := newHandlerFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/recipes", strings.NewReader(`{"description":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(h.CreateRecipe, req, f.alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Title is required", decode(t, rec)["error"])
}

func TestCreateRecipe_NoUser(t *testing.T) {
	h, _ := newHandlerFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/recipes", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(h.CreateRecipe, req, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateRecipe_JSONPartial(t *testing.T) {
	h, f := newHandlerFixture(t)
	r := f.create(t, f.alice, CreateInput{Title: "Dal", Steps: []string{"boil"}})

	req := httptest.NewRequest(http.MethodPut, "/recipes/"+r.ID.Hex(), strings.NewReader(`{"title":"Dal Fry"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(h.UpdateRecipe, req, f.alice, httprouter.Params{{Key: "id", Value: r.ID.Hex()}})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	recipe := decode(t, rec)["recipe"].(map[string]interface{})
	assert.Equal(t, "Dal Fry", recipe["title"])
	assert.Equal(t, []interface{}{"boil"}, recipe["steps"])
}

func TestUpdateRecipe_EmptyBody(t *testing.T) {
	h, f := newHandlerFixture(t)
	r := f.create(t, f.alice, CreateInput{Title: "Dal"})

	req := httptest.NewRequest(http.MethodPut, "/recipes/"+r.ID.Hex(), strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(h.UpdateRecipe, req, f.alice, httprouter.Params{{Key: "id", Value: r.ID.Hex()}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No fields to update"}`, rec.Body.String())
}

func TestToggleLikeAndComment(t *testing.T) {
	h, f := newHandlerFixture(t)
	r := f.create(t, f.alice, CreateInput{Title: "Dal"})
	ps := httprouter.Params{{Key: "id", Value: r.ID.Hex()}}

	rec := serve(h.ToggleLike, httptest.NewRequest(http.MethodPost, "/", nil), f.bob, ps)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["liked"])
	assert.Equal(t, float64(1), body["likes_count"])

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"Lovely"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = serve(h.AddComment, req, f.bob, ps)
	require.Equal(t, http.StatusOK, rec.Code)
	comment := decode(t, rec)["comment"].(map[string]interface{})
	assert.Equal(t, "bob", comment["user"])

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":""}`))
	rec = serve(h.AddComment, req, f.bob, ps)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
