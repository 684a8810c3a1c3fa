package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"duplicate entry", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-2' for key 'uq_user_track'"}, true},
		{"wrapped duplicate entry", fmt.Errorf("create like: %w", &mysql.MySQLError{Number: 1062}), true},
		{"foreign key violation", &mysql.MySQLError{Number: 1452}, false},
		{"plain error", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDuplicateKey(tt.err); got != tt.want {
				t.Errorf("isDuplicateKey(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestResolveLikeCreate(t *testing.T) {
	// A clean insert and a lost duplicate-key race both leave exactly one
	// (user, track) row, so both resolve to liked.
	if liked, err := resolveLikeCreate(nil); !liked || err != nil {
		t.Errorf("clean insert: got (%v, %v), want (true, nil)", liked, err)
	}
	if liked, err := resolveLikeCreate(&mysql.MySQLError{Number: 1062}); !liked || err != nil {
		t.Errorf("duplicate-key race: got (%v, %v), want (true, nil)", liked, err)
	}

	liked, err := resolveLikeCreate(errors.New("connection reset"))
	if liked || err == nil {
		t.Errorf("insert failure: got (%v, %v), want (false, error)", liked, err)
	}
}
