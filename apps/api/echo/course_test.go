package echoapi

import (
	"net/http"
	"testing"

	"github.com/skillspear/skillspear/core/account"
	"github.com/skillspear/skillspear/core/course"
)

func Test_courseAPI_queryApproved(t *testing.T) {
	db.Reset()

	approved := createOffering(t, "Intro to Go", "sensei@test.cd", 4999, course.StatusApproved)
	createOffering(t, "Not yet reviewed", "sensei@test.cd", 2999, course.StatusPending)
	createOffering(t, "Not good enough", "sensei@test.cd", 1999, course.StatusRejected)

	// the public listing carries approved offerings only, no auth needed
	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, []course.Offering{approved}),
	}
	req, rec := newRequest(http.MethodGet, "/course-offerings")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_courseAPI_create(t *testing.T) {
	db.Reset()

	student := createAccount(t, "jane@test.cd", "Jane", account.RoleStudent)
	teacher := createAccount(t, "sensei@test.cd", "Sensei", account.RoleTeacher)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/course-offerings", []byte(`{"title": "Intro to Go"}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errUnauthorizedBody),
		}, rec)
	})

	t.Run("teacher required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/course-offerings",
			getToken(t, student.Email, student.Name), []byte(`{"title": "Intro to Go"}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbiddenBody),
		}, rec)
	})

	t.Run("created pending approval", func(t *testing.T) {
		body := []byte(`{"title": "Intro to Go", "description": "From zero to gopher", "price": 4999}`)
		req, rec := newAuthRequest(http.MethodPost, "/course-offerings",
			getToken(t, teacher.Email, teacher.Name), body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v: %v", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var off course.Offering
		unmarchallObj(t, rec.Body.Bytes(), &off)
		if off.OwnerEmail != teacher.Email {
			t.Errorf("owner email = %q; want %q", off.OwnerEmail, teacher.Email)
		}
		if off.ApprovalStatus != course.StatusPending {
			t.Errorf("status = %v; want %v", off.ApprovalStatus, course.StatusPending)
		}
		if off.EnrolledCount != 0 {
			t.Errorf("enrolled count = %d; want 0", off.EnrolledCount)
		}
	})
}

func Test_courseAPI_queryAll(t *testing.T) {
	db.Reset()

	teacher := createAccount(t, "sensei@test.cd", "Sensei", account.RoleTeacher)
	admin := createAccount(t, "boss@test.cd", "Boss", account.RoleAdmin)
	pending := createOffering(t, "Not yet reviewed", teacher.Email, 2999, course.StatusPending)

	tests := []httpTest{
		{
			name: "auth required", path: "/course-offerings/all", wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errUnauthorizedBody),
		},
		{
			name: "admin required", path: "/course-offerings/all",
			token: getToken(t, teacher.Email, teacher.Name), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbiddenBody),
		},
		{
			name: "get all", path: "/course-offerings/all", token: getToken(t, admin.Email, admin.Name),
			wantCode: http.StatusOK, wantData: marchallObj(t, []course.Offering{pending}),
		},
		{
			name: "owned by self", path: "/course-offerings/owned/" + teacher.Email,
			token: getToken(t, teacher.Email, teacher.Name), wantCode: http.StatusOK,
			wantData: marchallObj(t, []course.Offering{pending}),
		},
		{
			name: "own data only", path: "/course-offerings/owned/" + teacher.Email,
			token: getToken(t, "king@test.cd", "King"), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbiddenBody),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseAPI_review(t *testing.T) {
	db.Reset()

	admin := createAccount(t, "boss@test.cd", "Boss", account.RoleAdmin)
	adminToken := getToken(t, admin.Email, admin.Name)
	first := createOffering(t, "Intro to Go", "sensei@test.cd", 4999, course.StatusPending)
	second := createOffering(t, "Advanced Perl", "sensei@test.cd", 9999, course.StatusPending)

	t.Run("approve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/course-offerings/"+first.ID+"/approve", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v: %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		var off course.Offering
		unmarchallObj(t, rec.Body.Bytes(), &off)
		if off.ApprovalStatus != course.StatusApproved {
			t.Errorf("status = %v; want %v", off.ApprovalStatus, course.StatusApproved)
		}
	})

	t.Run("reject", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/course-offerings/"+second.ID+"/reject", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v: %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		var off course.Offering
		unmarchallObj(t, rec.Body.Bytes(), &off)
		if off.ApprovalStatus != course.StatusRejected {
			t.Errorf("status = %v; want %v", off.ApprovalStatus, course.StatusRejected)
		}
	})

	t.Run("unknown offering", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/course-offerings/deadbeef/approve", adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errNotFoundBody),
		}, rec)
	})

	t.Run("admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/course-offerings/"+first.ID+"/reject",
			getToken(t, "king@test.cd", "King"))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbiddenBody),
		}, rec)
	})
}
