package scrape

import (
	"errors"
	"strings"
	"testing"

	"uctimetable/internal/model"
)

const coursePage = `
<html><body>
<table id="RepeatTable">
  <tbody>
    <tr><th colspan="5">Lecture A</th></tr>
    <tr class="datarow">
      <td data-title="Activity">01</td>
      <td data-title="Day">Wednesday</td>
      <td data-title="Time">10:00-11:00</td>
      <td data-title="Location">C2 Lecture Theatre (19/2-25/3)<br>C3 Lecture Theatre (2/4-27/5)</td>
      <td data-title="Weeks">19 Feb - 25 Mar<br>2 Apr - 27 May</td>
    </tr>
    <tr class="datarow">
      <td data-title="Activity">02</td>
      <td data-title="Day">Thursday</td>
      <td data-title="Time">14:00-15:00</td>
      <td data-title="Location"></td>
      <td data-title="Weeks">19 Feb - 25 Mar</td>
    </tr>
  </tbody>
  <tbody>
    <tr><th colspan="5">Tutorial A</th></tr>
    <tr class="datarow">
      <td data-title="Activity">01-P1</td>
      <td data-title="Day">Friday</td>
      <td data-title="Time">09:00-10:00</td>
      <td data-title="Location">Jack Erskine 001 Computer Lab (28/3)</td>
      <td data-title="Weeks">19 Feb - 25 Mar</td>
    </tr>
    <tr class="datarow">
      <td data-title="Activity">not-an-id</td>
      <td data-title="Day">Friday</td>
      <td data-title="Time">09:00-10:00</td>
      <td data-title="Location"></td>
      <td data-title="Weeks">19 Feb - 25 Mar</td>
    </tr>
  </tbody>
</table>
</body></html>`

func TestParseCoursePage(t *testing.T) {
	sections, rowErrs, err := ParseCoursePage(strings.NewReader(coursePage), 2018)
	if err != nil {
		t.Fatal(err)
	}

	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	if sections[0].Name != "Lecture A" || sections[1].Name != "Tutorial A" {
		t.Errorf("section names = %q, %q", sections[0].Name, sections[1].Name)
	}

	// The malformed id row is rejected but everything else loads.
	if len(rowErrs) != 1 {
		t.Fatalf("got %d row errors, want 1: %v", len(rowErrs), rowErrs)
	}
	var perr *ParseError
	if !errors.As(rowErrs[0], &perr) || perr.Section != "Tutorial A" {
		t.Errorf("row error = %v", rowErrs[0])
	}

	if len(sections[0].Activities) != 2 {
		t.Fatalf("Lecture A has %d activities, want 2", len(sections[0].Activities))
	}
	if len(sections[1].Activities) != 1 {
		t.Fatalf("Tutorial A has %d activities, want 1", len(sections[1].Activities))
	}

	lec := sections[0].Activities[0]
	if lec.ID != (model.ActivityID{Primary: 1}) || lec.Day != model.Wednesday {
		t.Errorf("lecture parsed as %+v", lec)
	}
	if lec.Start != (model.ClockTime{Hour: 10}) || lec.End != (model.ClockTime{Hour: 11}) {
		t.Errorf("lecture time %v-%v", lec.Start, lec.End)
	}
	if len(lec.Locations) != 2 {
		t.Fatalf("lecture has %d locations, want 2", len(lec.Locations))
	}
	if lec.Locations[0].Place != "C2 Lecture Theatre" || lec.Locations[1].Place != "C3 Lecture Theatre" {
		t.Errorf("locations = %q, %q", lec.Locations[0].Place, lec.Locations[1].Place)
	}
	if len(lec.Weeks) != 2 {
		t.Errorf("lecture has %d week intervals, want 2", len(lec.Weeks))
	}

	// Blank location cell: location unknown, still a valid row.
	blank := sections[0].Activities[1]
	if len(blank.Locations) != 0 {
		t.Errorf("blank-location row parsed %d locations", len(blank.Locations))
	}

	tut := sections[1].Activities[0]
	if tut.ID != (model.ActivityID{Primary: 1, Sub: 1, HasSub: true}) {
		t.Errorf("tutorial id = %+v", tut.ID)
	}
}

func TestParseCoursePageMissingTable(t *testing.T) {
	_, _, err := ParseCoursePage(strings.NewReader("<html><body><p>No such course</p></body></html>"), 2018)
	if !errors.Is(err, ErrNoDetailTable) {
		t.Fatalf("got %v, want ErrNoDetailTable", err)
	}
}

func TestParseCoursePageMissingColumn(t *testing.T) {
	page := `
<table id="RepeatTable"><tbody>
  <tr><th>Lecture A</th></tr>
  <tr class="datarow">
    <td data-title="Activity">01</td>
    <td data-title="Time">10:00-11:00</td>
    <td data-title="Weeks">19 Feb - 25 Mar</td>
  </tr>
</tbody></table>`

	sections, rowErrs, err := ParseCoursePage(strings.NewReader(page), 2018)
	if err != nil {
		t.Fatal(err)
	}
	if len(rowErrs) != 1 {
		t.Fatalf("got %d row errors, want 1", len(rowErrs))
	}
	if !strings.Contains(rowErrs[0].Error(), "Day") {
		t.Errorf("error should name the missing column: %v", rowErrs[0])
	}
	if len(sections) != 1 || len(sections[0].Activities) != 0 {
		t.Errorf("sections = %+v", sections)
	}
}
