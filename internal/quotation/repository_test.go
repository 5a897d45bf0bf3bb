package quotation

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The listing joins display names out of tables this package does not own.
// Keep the referenced columns in step with the contacts/users schema so the
// query cannot drift to a column Postgres will reject.
func TestListQuotationsSelectJoinsSchemaColumns(t *testing.T) {
	contactColumns := map[string]bool{
		"id": true, "org_id": true, "name": true, "company_name": true,
		"email": true, "phone": true, "address": true, "created_at": true,
	}
	userColumns := map[string]bool{
		"id": true, "org_id": true, "name": true,
		"email": true, "phone": true, "created_at": true,
	}

	for _, ref := range regexp.MustCompile(`c\.(\w+)`).FindAllStringSubmatch(listQuotationsSelect, -1) {
		assert.True(t, contactColumns[ref[1]], "contacts has no column %q", ref[1])
	}
	for _, ref := range regexp.MustCompile(`u\.(\w+)`).FindAllStringSubmatch(listQuotationsSelect, -1) {
		assert.True(t, userColumns[ref[1]], "users has no column %q", ref[1])
	}
}
