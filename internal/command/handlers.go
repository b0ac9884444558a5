package command

import (
	"bytes"
	"fmt"

	"github.com/tadpole/tadpole/internal/resp"
)

func handlePing(srv Server, args [][]byte) ([]byte, Action) {
	return resp.Pong, ActionNone
}

func handleGet(srv Server, args [][]byte) ([]byte, Action) {
	key := args[1]
	if fl := srv.FixedLength(); fl != nil && len(key) != fl.KeyLen {
		return resp.Error(fmt.Sprintf("Illegal key length, key length should be %d", fl.KeyLen)), ActionNone
	}

	if !srv.Store().Has(key) {
		return resp.NullBulk, ActionNone
	}
	val, _ := srv.Store().Get(key)
	return resp.Bulk(val), ActionNone
}

func handlePut(srv Server, args [][]byte) ([]byte, Action) {
	key, val := args[1], args[2]
	if fl := srv.FixedLength(); fl != nil && (len(key) != fl.KeyLen || len(val) != fl.ValLen) {
		return resp.Error(fmt.Sprintf("Illegal kv length, key/value length should be %d/%d", fl.KeyLen, fl.ValLen)), ActionNone
	}

	srv.Store().Put(key, val)
	return resp.OK, ActionNone
}

func handleDelete(srv Server, args [][]byte) ([]byte, Action) {
	key := args[1]
	if fl := srv.FixedLength(); fl != nil && len(key) != fl.KeyLen {
		return resp.Error(fmt.Sprintf("Illegal key length, key length should be %d", fl.KeyLen)), ActionNone
	}

	if srv.Store().Delete(key) {
		return resp.SimpleString("1"), ActionNone
	}
	return resp.SimpleString("0"), ActionNone
}

func handleScan(srv Server, args [][]byte) ([]byte, Action) {
	lo, hi := args[1], args[2]
	if fl := srv.FixedLength(); fl != nil && (len(lo) != fl.KeyLen || len(hi) != fl.KeyLen) {
		return resp.Error(fmt.Sprintf("Illegal cursor length, key length should be %d", fl.KeyLen)), ActionNone
	}

	if bytes.Compare(lo, hi) > 0 {
		return resp.Error(fmt.Sprintf("CURSORERR '%s' should less or equal to '%s'", lo, hi)), ActionNone
	}

	var matches [][]byte
	srv.Store().Scan(lo, hi, func(key, val []byte) {
		matches = append(matches, key)
	})

	var buf bytes.Buffer
	buf.WriteByte('+')
	buf.Write(bytes.Join(matches, []byte("\n")))
	buf.WriteString("\r\n")
	return buf.Bytes(), ActionNone
}

func handleShow(srv Server, args [][]byte) ([]byte, Action) {
	min := srv.Store().FirstKey()
	max := srv.Store().FindMax()

	minStr := "NULL"
	if min != nil {
		minStr = string(min)
	}
	maxStr := "NULL"
	if max != nil {
		maxStr = string(max)
	}

	msg := fmt.Sprintf("tadpole:keys=%d,min=%s,max=%s", srv.Store().Len(), minStr, maxStr)
	return resp.SimpleString(msg), ActionNone
}

func handleShutdown(srv Server, args [][]byte) ([]byte, Action) {
	return nil, ActionShutdown
}
