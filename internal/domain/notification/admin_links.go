package notification

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Admin event types with a known destination in the admin console.
const (
	AdminNewCremationCenter = "new_cremation_center"
	AdminPendingApplication = "pending_application"
	AdminRefundRequest      = "refund_request"
	AdminNewAppeal          = "new_appeal"
	AdminAppealSubmitted    = "appeal_submitted"
)

// AdminLink derives the console link for an admin event. Unknown types get no link.
// subjectUserID is the account an appeal was filed by; zero omits it.
func AdminLink(eventType, entityType string, entityID, subjectUserID int64) *string {
	var link string

	switch eventType {
	case AdminNewCremationCenter, AdminPendingApplication:
		link = "/admin/applications"
		if entityID > 0 {
			link += "/" + strconv.FormatInt(entityID, 10)
		}

	case AdminRefundRequest:
		link = "/admin/refunds"
		if entityID > 0 {
			link += fmt.Sprintf("?refundId=%d", entityID)
		}

	case AdminNewAppeal, AdminAppealSubmitted:
		link = "/admin/users/furparents"
		et := strings.ToLower(entityType)
		if strings.Contains(et, "business") || strings.Contains(et, "cremation") || strings.Contains(et, "provider") {
			link = "/admin/users/cremation"
		}
		if entityID > 0 {
			q := url.Values{}
			q.Set("appealId", strconv.FormatInt(entityID, 10))
			if subjectUserID > 0 {
				q.Set("userId", strconv.FormatInt(subjectUserID, 10))
			}
			link += "?" + q.Encode()
		}

	default:
		return nil
	}
	return &link
}
