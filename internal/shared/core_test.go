package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_PublicName(t *testing.T) {
	assert.Equal(t, "Helping Hands", (&User{OrganizationName: "Helping Hands", DisplayName: "Asha", Email: "a@x.org"}).PublicName())
	assert.Equal(t, "Asha", (&User{DisplayName: "Asha", Email: "a@x.org"}).PublicName())
	assert.Equal(t, "a@x.org", (&User{Email: "a@x.org"}).PublicName())
}
