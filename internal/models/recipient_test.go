package models

import (
	"encoding/json"
	"testing"
)

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{`12`, "12"},
		{`"12"`, "12"},
		{`" 7 "`, "7"},
		{`null`, ""},
	}
	for _, tt := range tests {
		var id ID
		if err := json.Unmarshal([]byte(tt.in), &id); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.in, err)
		}
		if id != tt.want {
			t.Errorf("unmarshal %s = %q, want %q", tt.in, id, tt.want)
		}
	}

	var id ID
	if err := json.Unmarshal([]byte(`{}`), &id); err == nil {
		t.Error("expected error for object id")
	}
}

func TestRecipientDecode(t *testing.T) {
	data := `{"id":3,"first_name":" Ana ","last_name":"","phone":"0991","barrio":"Centro","table_id":15,"table_delivered":true}`
	var r Recipient
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.ID != 3 || r.Neighborhood != "Centro" || r.TableID != "15" || !r.TableDelivered {
		t.Errorf("unexpected recipient: %+v", r)
	}
	if got := r.FullName(); got != "Ana" {
		t.Errorf("FullName() = %q", got)
	}
}

func TestRecipientDecodeID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: `{"id":12,"first_name":"Ana"}`, want: 12},
		{in: `{"id":"12","first_name":"Ana"}`, want: 12},
		{in: `{"id":" 12 ","first_name":"Ana"}`, want: 12},
		{in: `{"first_name":"Ana"}`, want: 0},
		{in: `{"id":"doce","first_name":"Ana"}`, wantErr: true},
	}
	for _, tt := range tests {
		var r Recipient
		err := json.Unmarshal([]byte(tt.in), &r)
		if tt.wantErr {
			if err == nil {
				t.Errorf("unmarshal %s: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unmarshal %s: %v", tt.in, err)
		}
		if r.ID != tt.want || r.FirstName != "Ana" {
			t.Errorf("unmarshal %s = %+v, want id %d", tt.in, r, tt.want)
		}
	}
}

func TestCandidateListDecodeMixedIDs(t *testing.T) {
	var l CandidateList
	if err := json.Unmarshal([]byte(`[{"id":1},{"id":"2"},{"id":3}]`), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	ids := l.IDs()
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("IDs() = %v", ids)
	}

	// round trip through the session encoding
	data, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back CandidateList
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Index(2) != 1 {
		t.Errorf("round trip lost ids: %s", data)
	}
}

func TestCandidateList(t *testing.T) {
	l := CandidateList{{ID: 4}, {ID: 9}, {ID: 1}}
	ids := l.IDs()
	if len(ids) != 3 || ids[0] != 4 || ids[2] != 1 {
		t.Errorf("IDs() = %v", ids)
	}
	if l.Index(9) != 1 || l.Index(5) != -1 {
		t.Error("unexpected Index result")
	}
}

func TestCampaignStatus(t *testing.T) {
	for _, s := range []CampaignStatus{CampaignCompleted, CampaignCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []CampaignStatus{CampaignPending, CampaignRunning, CampaignPaused} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
