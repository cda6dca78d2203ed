package api

import (
	"net/http"
	"strconv"

	"github.com/pbaille/unikit/internal/domain"
	"github.com/pbaille/unikit/internal/grading"
	"github.com/pbaille/unikit/internal/ledger"
)

func (s *Server) getLedger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"years":     s.svc.Snapshot(),
		"structure": s.svc.Structure(),
	})
}

// AddYearRequest is the request body for adding a year
type AddYearRequest struct {
	Year      int `json:"year" validate:"required,gt=0"`
	Semesters int `json:"semesters" validate:"required,gt=0"`
}

func (s *Server) addYear(w http.ResponseWriter, r *http.Request) {
	var req AddYearRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.svc.AddYear(r.Context(), req.Year, req.Semesters); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"structure": s.svc.Structure()})
}

func (s *Server) removeYear(w http.ResponseWriter, r *http.Request) {
	year, ok := pathInt(w, r, "year")
	if !ok {
		return
	}
	if !confirmed(r) {
		requireConfirm(w, "removing year "+strconv.Itoa(year), s.svc.SubjectCount(year))
		return
	}
	dropped, err := s.svc.RemoveYear(r.Context(), year)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"structure":        s.svc.Structure(),
		"subjects_dropped": dropped,
	})
}

// SetSemestersRequest is the request body for changing a year's semester count
type SetSemestersRequest struct {
	Semesters int `json:"semesters" validate:"required,gt=0"`
}

func (s *Server) setSemesters(w http.ResponseWriter, r *http.Request) {
	year, ok := pathInt(w, r, "year")
	if !ok {
		return
	}
	var req SetSemestersRequest
	if !decode(w, r, &req) {
		return
	}
	if n := s.svc.SemesterDropCount(year, req.Semesters); n > 0 && !confirmed(r) {
		requireConfirm(w, "shrinking year "+strconv.Itoa(year), n)
		return
	}
	dropped, err := s.svc.SetSemesters(r.Context(), year, req.Semesters)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"structure":        s.svc.Structure(),
		"subjects_dropped": dropped,
	})
}

func (s *Server) resetStructure(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		requireConfirm(w, "resetting the structure", s.svc.ResetDropCount())
		return
	}
	dropped, err := s.svc.ResetStructure(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"structure":        s.svc.Structure(),
		"subjects_dropped": dropped,
	})
}

// AddSubjectRequest is the request body for adding a subject.
// An empty grade takes the configured default grade.
type AddSubjectRequest struct {
	Year     int     `json:"year" validate:"required,gt=0"`
	Semester int     `json:"semester" validate:"required,gt=0"`
	Name     string  `json:"name"`
	Credit   float64 `json:"credit" validate:"gte=0"`
	Grade    string  `json:"grade" validate:"omitempty,grade"`
}

func (s *Server) addSubject(w http.ResponseWriter, r *http.Request) {
	var req AddSubjectRequest
	if !decode(w, r, &req) {
		return
	}
	slot := domain.Slot{Year: req.Year, Semester: req.Semester}
	sub, err := s.svc.AddSubject(r.Context(), slot, domain.Subject{Name: req.Name, Credit: req.Credit, Grade: req.Grade})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// UpdateSubjectRequest carries the fields to change; absent fields are kept
type UpdateSubjectRequest struct {
	Name   *string  `json:"name"`
	Credit *float64 `json:"credit" validate:"omitempty,gte=0"`
	Grade  *string  `json:"grade" validate:"omitempty,grade"`
}

func (s *Server) updateSubject(w http.ResponseWriter, r *http.Request) {
	// Support prefix matching
	id, err := s.svc.ResolveSubject(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	var req UpdateSubjectRequest
	if !decode(w, r, &req) {
		return
	}
	sub, err := s.svc.UpdateSubject(r.Context(), id, ledger.Patch{Name: req.Name, Credit: req.Credit, Grade: req.Grade})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) removeSubject(w http.ResponseWriter, r *http.Request) {
	id, err := s.svc.ResolveSubject(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.svc.RemoveSubject(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getCGPA(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Result())
}

func (s *Server) calculate(w http.ResponseWriter, r *http.Request) {
	res, calc, err := s.svc.Calculate(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"result":      res,
		"calculation": calc,
	})
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	calcs, err := s.svc.History(r.Context(), limit, offset)
	if err != nil {
		s.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"calculations": calcs,
		"limit":        limit,
		"offset":       offset,
	})
}

// GradeInfo is one row of the scale as shown to clients
type GradeInfo struct {
	Symbol      string  `json:"symbol"`
	Description string  `json:"description"`
	Points      float64 `json:"points"`
}

func (s *Server) getScale(w http.ResponseWriter, r *http.Request) {
	sc := s.svc.Scale()
	grades := make([]GradeInfo, len(grading.Symbols))
	for i, g := range grading.Symbols {
		grades[i] = GradeInfo{Symbol: g, Description: grading.Descriptions[g], Points: sc.Point(g)}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"default": sc.Default,
		"grades":  grades,
	})
}

// DefaultGradeRequest is the request body for changing the default grade
type DefaultGradeRequest struct {
	Grade string `json:"grade" validate:"required,grade"`
}

func (s *Server) setDefaultGrade(w http.ResponseWriter, r *http.Request) {
	var req DefaultGradeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.svc.SetDefaultGrade(r.Context(), req.Grade); err != nil {
		s.fail(w, err)
		return
	}
	s.getScale(w, r)
}

// SetPointRequest is the request body for changing one grade's value
type SetPointRequest struct {
	Points *float64 `json:"points" validate:"required,gte=0,lte=10"`
}

func (s *Server) setPoint(w http.ResponseWriter, r *http.Request) {
	var req SetPointRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.svc.SetPoint(r.Context(), r.PathValue("grade"), *req.Points); err != nil {
		s.fail(w, err)
		return
	}
	s.getScale(w, r)
}

func (s *Server) resetPoints(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ResetPoints(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	s.getScale(w, r)
}

func (s *Server) getRoster(w http.ResponseWriter, r *http.Request) {
	roster := s.svc.Roster()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mine":     roster.Mine,
		"friends":  roster.Friends,
		"rankings": roster.Rankings(),
	})
}

// AddFriendRequest is the request body for adding a friend to the roster
type AddFriendRequest struct {
	Name string   `json:"name" validate:"required,notblank"`
	CGPA *float64 `json:"cgpa" validate:"required,gte=0,lte=10"`
}

func (s *Server) addFriend(w http.ResponseWriter, r *http.Request) {
	var req AddFriendRequest
	if !decode(w, r, &req) {
		return
	}
	f, err := s.svc.AddFriend(r.Context(), req.Name, *req.CGPA)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) removeFriend(w http.ResponseWriter, r *http.Request) {
	id, err := s.svc.ResolveFriend(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.svc.RemoveFriend(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetMineRequest sets the user's own CGPA, either explicitly or from the ledger
type SetMineRequest struct {
	CGPA *float64 `json:"cgpa" validate:"required_without=Sync,omitempty,gte=0,lte=10"`
	Sync bool     `json:"sync"`
}

func (s *Server) setMine(w http.ResponseWriter, r *http.Request) {
	var req SetMineRequest
	if !decode(w, r, &req) {
		return
	}
	var err error
	if req.Sync {
		_, err = s.svc.SyncMine(r.Context())
	} else {
		err = s.svc.SetMine(r.Context(), *req.CGPA)
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	s.getRoster(w, r)
}
