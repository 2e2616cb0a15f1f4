package webutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"verify_keep/internal/middleware"
	"verify_keep/internal/model"
)

// リクエストボディの上限 (1MB)
const maxBodyBytes = 1 << 20

// DecodeJSONBody はリクエストボディをデコードします。
// ボディは平坦なオブジェクトか、"data" キーの下に1段ネストしたオブジェクトのどちらでも受け付けます。
// 未知のフィールドは拒否します。
func DecodeJSONBody(r *http.Request, dst interface{}) error {
	logger := middleware.GetLogger(r.Context())
	if r.Body == nil {
		return invalidBodyError()
	}
	defer r.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		logger.Warn("Error reading request body", "error", err)
		return invalidBodyError()
	}
	if len(raw) > maxBodyBytes {
		return model.NewAppError("REQUEST_TOO_LARGE", "Request body is too large.", "", model.ErrInvalidInput)
	}

	payload, err := unwrapDataEnvelope(raw)
	if err != nil {
		logger.Warn("Error decoding JSON body", "error", err)
		return invalidBodyError()
	}

	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		logger.Warn("Error decoding JSON body", "error", err)
		return invalidBodyError()
	}
	if decoder.More() {
		logger.Warn("Unexpected data after JSON body")
		return invalidBodyError()
	}
	trimEmailFields(dst)
	return nil
}

// trimEmailFields は email ルールを持つ文字列フィールドの前後の空白を除去します
func trimEmailFields(dst interface{}) {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		if field.Kind() != reflect.String || !field.CanSet() {
			continue
		}
		for _, rule := range strings.Split(t.Field(i).Tag.Get("validate"), ",") {
			if rule == "email" {
				field.SetString(strings.TrimSpace(field.String()))
				break
			}
		}
	}
}

// unwrapDataEnvelope は {"data": {...}} 形式なら内側のオブジェクトを返します
func unwrapDataEnvelope(raw []byte) ([]byte, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, err
	}
	if top == nil {
		return nil, errors.New("request body must be a JSON object")
	}

	inner, ok := top["data"]
	if !ok {
		return raw, nil
	}
	trimmed := bytes.TrimSpace(inner)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		// "data" がオブジェクトでなければ平坦な形式として扱う
		return raw, nil
	}
	return trimmed, nil
}

func invalidBodyError() *model.AppError {
	return model.NewAppError("INVALID_REQUEST_BODY", "Request body is malformed.", "", model.ErrInvalidInput)
}
