package asil

import "testing"

func TestParseSearchHTML(t *testing.T) {
	html := `
	<html><body>
	<ul class="result">
		<li class="apt-item" data-seq="10423">
			<span class="name">남산타운</span>
			<span class="desc">서울 중구 신당동 / 02년05월 / 5152세대 / 아파트</span>
		</li>
		<li class="apt-item" data-seq="20911">
			<span class="name">래미안슈르(301~342동)</span>
			<span class="desc">경기 과천시 중앙동 / 08년07월 / 1571세대 / 아파트</span>
		</li>
		<li class="apt-item">
			<span class="name">seq 없는 항목</span>
		</li>
		<li class="apt-item" data-seq="30001">
			<span class="desc">이름 없는 항목</span>
		</li>
	</ul>
	</body></html>`

	results, err := parseSearchHTML([]byte(html))
	if err != nil {
		t.Fatalf("parseSearchHTML() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len = %d, want 2", len(results))
	}

	first := results[0]
	if first.Seq != "10423" || first.Name != "남산타운" {
		t.Errorf("first result = %+v", first)
	}
	if first.Description != "서울 중구 신당동 / 02년05월 / 5152세대 / 아파트" {
		t.Errorf("first description = %q", first.Description)
	}

	if results[1].Seq != "20911" || results[1].Name != "래미안슈르(301~342동)" {
		t.Errorf("second result = %+v", results[1])
	}
}

func TestParseSearchHTMLNoResults(t *testing.T) {
	results, err := parseSearchHTML([]byte(`<html><body><ul class="result"></ul></body></html>`))
	if err != nil {
		t.Fatalf("parseSearchHTML() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len = %d, want 0", len(results))
	}
}
