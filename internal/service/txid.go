package service

import (
	"crypto/rand"
	"io"
	"time"
)

const txidAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TxIDGenerator builds receipt numbers of the form TXN-20240131154502-K3Z9QA.
// Uniqueness is probabilistic; the unique index on the column is the backstop.
type TxIDGenerator struct {
	now  func() time.Time
	rand io.Reader
}

func NewTxIDGenerator() *TxIDGenerator {
	return &TxIDGenerator{now: time.Now, rand: rand.Reader}
}

func (g *TxIDGenerator) Next() (string, error) {
	var buf [6]byte
	if _, err := io.ReadFull(g.rand, buf[:]); err != nil {
		return "", err
	}
	suffix := make([]byte, len(buf))
	for i, b := range buf {
		suffix[i] = txidAlphabet[int(b)%len(txidAlphabet)]
	}
	return "TXN-" + g.now().Format("20060102150405") + "-" + string(suffix), nil
}
