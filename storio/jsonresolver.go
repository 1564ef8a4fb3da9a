package storio

import (
	jsoniter "github.com/json-iterator/go"
)

// NewJSONGetResolver creates a GetResolver for rows that carry the whole
// object as a single JSON document column (the first selected column).
// The document is validated and unmarshaled into T with jsoniter.
//
// Combine it with a Query selecting only the document column, e.g.:
//
//	query := storio.BuildQuery().
//		Table("user_profiles").
//		Columns("profile_json").
//		Where("user_id = ?", userID).
//		Finalize()
func NewJSONGetResolver[T any]() GetResolver[T] {
	return NewGetResolver(func(cursor Cursor) (T, error) {
		var zero T
		var document []byte

		if scanErr := cursor.Scan(&document); scanErr != nil {
			return zero, scanErr
		}

		if !jsoniter.ConfigFastest.Valid(document) {
			return zero, ErrInvalidJSONDocument
		}

		var object T
		if unmarshalErr := jsoniter.ConfigFastest.Unmarshal(document, &object); unmarshalErr != nil {
			return zero, unmarshalErr
		}

		return object, nil
	})
}
