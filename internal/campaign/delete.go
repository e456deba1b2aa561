package campaign

// DeleteToken is the literal the operator must type to delete a campaign
const DeleteToken = "ELIMINAR"

// DeleteRequest is the two-step guard in front of a campaign deletion.
// The request is only sent after Confirm and a matching Verify.
type DeleteRequest struct {
	CampaignID int64
	confirmed  bool
	verified   bool
}

// NewDeleteRequest starts a deletion of the campaign
func NewDeleteRequest(id int64) *DeleteRequest {
	return &DeleteRequest{CampaignID: id}
}

// Confirm records the operator's intent
func (d *DeleteRequest) Confirm() {
	d.confirmed = true
}

// Verify checks the typed token. It must follow Confirm.
func (d *DeleteRequest) Verify(token string) error {
	if !d.confirmed {
		return ErrNotConfirmed
	}
	if token != DeleteToken {
		d.verified = false
		return ErrTokenMismatch
	}
	d.verified = true
	return nil
}

// Ready reports whether both steps passed
func (d *DeleteRequest) Ready() bool {
	return d.confirmed && d.verified
}

func (d *DeleteRequest) check() error {
	if !d.confirmed {
		return ErrNotConfirmed
	}
	if !d.verified {
		return ErrTokenMismatch
	}
	return nil
}
