package borrow

import (
	"time"

	"gorm.io/gorm"
)

// Borrow is an active loan of a book copy.
type Borrow struct {
	gorm.Model
	UserID     uint      `json:"userId" gorm:"index;not null"`
	BookID     uint      `json:"bookId" gorm:"index;not null"`
	BorrowDate time.Time `json:"borrowDate"`
	DueDate    time.Time `json:"dueDate"`
}

// History is a finished loan. Users may hide entries from their default
// listing; staff always see everything.
type History struct {
	gorm.Model
	UserID     uint      `json:"userId" gorm:"index;not null"`
	BookID     uint      `json:"bookId" gorm:"index;not null"`
	BorrowDate time.Time `json:"borrowDate"`
	ReturnDate time.Time `json:"returnDate"`
	Hidden     bool      `json:"hidden" gorm:"not null;default:false"`
}
