package core

import (
	"strconv"

	"github.com/vovakirdan/birthdaywall/internal/store"
)

// Locator picks one message out of the collection.
type Locator interface {
	locate(msgs []store.Message) (int, bool)
	String() string
}

// ByID locates a message by its stable identifier.
func ByID(id string) Locator {
	return idLocator(id)
}

// AtPosition locates a message by its index in storage order (oldest first).
// Positions shift whenever an earlier message is deleted.
func AtPosition(index int) Locator {
	return positionLocator(index)
}

type idLocator string

func (l idLocator) locate(msgs []store.Message) (int, bool) {
	if l == "" {
		return 0, false
	}
	for i := range msgs {
		if msgs[i].ID == string(l) {
			return i, true
		}
	}
	return 0, false
}

func (l idLocator) String() string { return "id:" + string(l) }

type positionLocator int

func (l positionLocator) locate(msgs []store.Message) (int, bool) {
	i := int(l)
	if i < 0 || i >= len(msgs) {
		return 0, false
	}
	return i, true
}

func (l positionLocator) String() string { return "position:" + strconv.Itoa(int(l)) }
