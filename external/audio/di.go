package audio

import (
	internalaudio "github.com/quokkastudio/vcscribe/internal/audio"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.ProvideValue(injector, internalaudio.DecoderFactory(NewDecoder))
}
