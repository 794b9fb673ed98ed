package teamspeak

import (
	"errors"
	"fmt"
	"strings"

	ts3 "github.com/multiplay/go-ts3"
)

var ErrNotFound = errors.New("teamspeak entry not found")

// ServerQuery 回應中代表查無資料的錯誤代碼
const (
	errInvalidClientID     = 512
	errDatabaseEmptyResult = 1281
)

// QueryError 是 ServerQuery 回傳的 error 行 (id 不為 0)
type QueryError struct {
	ID  int
	Msg string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("serverquery error id=%d msg=%s", e.ID, e.Msg)
}

// Is 讓 errors.Is(err, ErrNotFound) 可以判斷查無資料
func (e *QueryError) Is(target error) bool {
	return target == ErrNotFound && (e.ID == errInvalidClientID || e.ID == errDatabaseEmptyResult)
}

var unescaper = strings.NewReplacer(
	`\\`, `\`,
	`\/`, `/`,
	`\s`, ` `,
	`\p`, `|`,
	`\a`, "\a",
	`\b`, "\b",
	`\f`, "\f",
	`\n`, "\n",
	`\r`, "\r",
	`\t`, "\t",
	`\v`, "\v",
)

func unescape(s string) string {
	return unescaper.Replace(s)
}

// parseRecords 解析資料行，"|" 分隔多筆資料，空白分隔欄位
func parseRecords(line string) []map[string]string {
	var records []map[string]string
	for _, entry := range strings.Split(line, "|") {
		record := map[string]string{}
		for _, field := range strings.Fields(entry) {
			key, value, _ := strings.Cut(field, "=")
			record[key] = unescape(value)
		}
		records = append(records, record)
	}
	return records
}

// toQueryError 將 go-ts3 的錯誤轉成 QueryError，讓呼叫端可以判斷 ErrNotFound
func toQueryError(err error) error {
	var tsErr *ts3.Error
	if errors.As(err, &tsErr) {
		return &QueryError{ID: tsErr.ID, Msg: tsErr.Msg}
	}
	return err
}
