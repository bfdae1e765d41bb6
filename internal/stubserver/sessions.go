package stubserver

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
)

var sessionSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		"sessions": {
			Name: "sessions",
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:         "id",
					Unique:       true,
					AllowMissing: false,
					Indexer:      &memdb.StringFieldIndex{Field: "Token"},
				},
				"userID": {
					Name:         "userID",
					Unique:       false,
					AllowMissing: false,
					Indexer:      &memdb.StringFieldIndex{Field: "UserID"},
				},
			},
		},
	},
}

// sessionRecord is one live provider session
type sessionRecord struct {
	Token   string
	UserID  string
	Email   string
	Expires int64
}

// sessionTable is the in-memory session storage of the stub server,
// built using hashicorp/go-memdb.
type sessionTable struct {
	db  *memdb.MemDB
	ttl time.Duration
}

func newSessionTable(ttl time.Duration) (*sessionTable, error) {
	db, err := memdb.NewMemDB(sessionSchema)
	if err != nil {
		return nil, err
	}
	return &sessionTable{db: db, ttl: ttl}, nil
}

// create inserts a new session for the given user
func (t *sessionTable) create(userID, email string) (*sessionRecord, error) {
	rec := &sessionRecord{
		Token:   uuid.New().String(),
		UserID:  userID,
		Email:   email,
		Expires: time.Now().Add(t.ttl).Unix(),
	}

	txn := t.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert("sessions", rec); err != nil {
		return nil, err
	}
	txn.Commit()

	return rec, nil
}

// getByToken retrieves a live session by its token. Expired sessions are
// treated as absent.
func (t *sessionTable) getByToken(token string) (*sessionRecord, error) {
	txn := t.db.Txn(false)
	obj, err := txn.First("sessions", "id", token)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}

	rec := obj.(*sessionRecord)
	if rec.Expires <= time.Now().Unix() {
		return nil, nil
	}
	return rec, nil
}

// rotate replaces a session with a fresh token for the same user
func (t *sessionTable) rotate(old *sessionRecord) (*sessionRecord, error) {
	rec := &sessionRecord{
		Token:   uuid.New().String(),
		UserID:  old.UserID,
		Email:   old.Email,
		Expires: time.Now().Add(t.ttl).Unix(),
	}

	txn := t.db.Txn(true)
	defer txn.Abort()
	if err := txn.Delete("sessions", old); err != nil {
		return nil, err
	}
	if err := txn.Insert("sessions", rec); err != nil {
		return nil, err
	}
	txn.Commit()

	return rec, nil
}

// delete removes a session by its token
func (t *sessionTable) delete(token string) error {
	txn := t.db.Txn(true)
	defer txn.Abort()
	if _, err := txn.DeleteAll("sessions", "id", token); err != nil {
		return err
	}
	txn.Commit()
	return nil
}
