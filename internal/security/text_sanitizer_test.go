package security

import "testing"

func TestTextSanitizer_Sanitize(t *testing.T) {
	sanitizer := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "プレーンテキストはそのまま", input: "Buy milk", want: "Buy milk"},
		{name: "空文字列", input: "", want: ""},
		{name: "前後の空白は保持", input: "  Ana  ", want: "  Ana  "},
		{name: "タグを除去", input: "<b>Buy</b> milk", want: "Buy milk"},
		{name: "scriptは中身ごと除去", input: "<script>alert(1)</script>Ana", want: "Ana"},
		{name: "アンパサンドは元に戻す", input: "Tom & Jerry", want: "Tom & Jerry"},
		{name: "タグだけなら空", input: "<img src=x onerror=alert(1)>", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizer.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
