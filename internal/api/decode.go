package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/examscores/scorebot/internal/domain"
)

const maxBodyBytes = 1 << 20

// decodeBody reads a single JSON object into dst. Syntax and type problems come
// back as *domain.ValidationError so they answer 422 like field violations.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		name, typ := jsonKind(typeErr.Type.Kind())
		return &domain.ValidationError{Fields: []domain.FieldError{{
			Loc:  []string{"body", typeErr.Field},
			Msg:  "Input should be a valid " + name,
			Type: typ,
		}}}
	}

	msg := "JSON decode error"
	if errors.Is(err, io.EOF) {
		msg = "Field required"
	}
	return &domain.ValidationError{Fields: []domain.FieldError{{
		Loc:  []string{"body"},
		Msg:  msg,
		Type: "json_invalid",
	}}}
}

func jsonKind(k reflect.Kind) (string, string) {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer", "int_type"
	case reflect.String:
		return "string", "string_type"
	}
	return k.String(), k.String() + "_type"
}

// pathID parses the {id} route variable as a positive integer.
func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &domain.ValidationError{Fields: []domain.FieldError{{
			Loc:  []string{"path", "student_id"},
			Msg:  "Input should be a valid integer, unable to parse string as an integer",
			Type: "int_parsing",
		}}}
	}
	return id, nil
}
