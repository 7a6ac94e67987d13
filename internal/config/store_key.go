package config

import (
	"fmt"
)

type StoreKeyStruct struct{}

func NewStoreKeyStruct() *StoreKeyStruct {
	return &StoreKeyStruct{}
}

// CurrentQuizKey returns the key holding a client's selected quiz id.
func (r *StoreKeyStruct) CurrentQuizKey(clientID string) string {
	return fmt.Sprintf("client:%s:current_quiz_id", clientID)
}

// ExamStateKey returns the key holding a client's exam session snapshot.
func (r *StoreKeyStruct) ExamStateKey(clientID string) string {
	return fmt.Sprintf("client:%s:exam_state", clientID)
}

var StoreKey = NewStoreKeyStruct()
