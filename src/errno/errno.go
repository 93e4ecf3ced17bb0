// Package errno defines the kernel's error codes. The numbering matches
// the Linux errno table so a syscall's negative return value means what
// every other kernel's ABI says it means, letting userland link against
// an unmodified libc.
package errno

// Errno is a kernel error code. The zero value is not a valid error; a
// successful call returns a nil error, never Errno(0).
type Errno int32

// Error implements the error interface.
func (e Errno) Error() string {
	if s, ok := text[e]; ok {
		return s
	}
	return "unknown error"
}

// Syscall returns the negated errno value a syscall handler places in its
// return register on failure.
func (e Errno) Syscall() int64 { return -int64(e) }

const (
	OperationNotPermitted         Errno = 1
	FileNotFound                  Errno = 2
	ProcessNotFound               Errno = 3
	Interrupted                   Errno = 4
	IOError                       Errno = 5
	DeviceNotFound                Errno = 6
	ArgumentListTooLong           Errno = 7
	InvalidExecutable             Errno = 8
	BadFileDescriptor             Errno = 9
	NoChildProcesses              Errno = 10
	TryAgain                      Errno = 11
	OutOfMemory                   Errno = 12
	PermissionDenied              Errno = 13
	BadAddress                    Errno = 14
	BlockDeviceRequired           Errno = 15
	DeviceBusy                    Errno = 16
	FileExists                    Errno = 17
	CrossDeviceLink               Errno = 18
	NoSuchDevice                  Errno = 19
	NotADirectory                 Errno = 20
	IsADirectory                  Errno = 21
	InvalidArgument               Errno = 22
	FileTableOverflow             Errno = 23
	TooManyOpenFiles              Errno = 24
	NotATerminal                  Errno = 25
	TextFileBusy                  Errno = 26
	FileTooLarge                  Errno = 27
	NoSpaceLeft                   Errno = 28
	IllegalSeek                   Errno = 29
	ReadOnlyFilesystem            Errno = 30
	TooManyLinks                  Errno = 31
	BrokenPipe                    Errno = 32
	MathDomainError               Errno = 33
	MathRangeError                Errno = 34
	Deadlock                      Errno = 35
	FilenameTooLong               Errno = 36
	NoLocksAvailable              Errno = 37
	NotImplemented                Errno = 38
	DirectoryNotEmpty             Errno = 39
	TooManySymlinks               Errno = 40
	OperationNotSupportedOnObject Errno = 41
	WouldBlock                          = TryAgain
	NoMessage                     Errno = 42
	IdentifierRemoved             Errno = 43
	ChannelOutOfRange             Errno = 44
	Level2NotSynced               Errno = 45
	Level3Halted                  Errno = 46
	Level3Reset                   Errno = 47
	LinkOutOfRange                Errno = 48
	ProtocolNotAttached           Errno = 49
	NoCSIAvailable                Errno = 50
	Level2Halted                  Errno = 51
	InvalidExchange               Errno = 52
	InvalidRequestDescriptor      Errno = 53
	ExchangeFull                  Errno = 54
	NoAnode                       Errno = 55
	InvalidRequestCode            Errno = 56
	InvalidSlot                   Errno = 57
	InvalidMessage                Errno = 58
	BadFontFormat                 Errno = 59
	NotAStream                    Errno = 60
	NoDataAvailable               Errno = 61
	TimerExpired                  Errno = 62
	OutOfStreams                  Errno = 63
	NotOnNetwork                  Errno = 64
	PackageNotInstalled           Errno = 65
	ObjectIsRemote                Errno = 66
	LinkSevered                   Errno = 67
	AdvertiseError                Errno = 68
	MountError                    Errno = 69
	CommunicationError            Errno = 70
	ProtocolError                 Errno = 71
	MultihopAttempted             Errno = 72
	RFSError                      Errno = 73
	NotDataMessage                Errno = 74
	ValueOverflow                 Errno = 75
	NameNotUnique                 Errno = 76
	BadFileDescriptorState        Errno = 77
	RemoteAddressChanged          Errno = 78
	LibraryAccessError            Errno = 79
	LibraryCorrupted              Errno = 80
	LibrarySectionCorrupted       Errno = 81
	TooManyLibraries              Errno = 82
	CannotExecLibrary             Errno = 83
	IllegalByteSequence           Errno = 84
	RestartSyscall                Errno = 85
	StreamPipeError               Errno = 86
	TooManyUsers                  Errno = 87
	NotASocket                    Errno = 88
	DestinationAddressRequired    Errno = 89
	MessageTooLong                Errno = 90
	WrongProtocolType             Errno = 91
	ProtocolNotAvailable          Errno = 92
	ProtocolNotSupported          Errno = 93
	SocketTypeNotSupported        Errno = 94
	OperationNotSupported         Errno = 95
	ProtocolFamilyNotSupported    Errno = 96
	AddressFamilyNotSupported     Errno = 97
	AddressInUse                  Errno = 98
	AddressNotAvailable           Errno = 99
	NetworkDown                   Errno = 100
	NetworkUnreachable            Errno = 101
	NetworkReset                  Errno = 102
	ConnectionAborted             Errno = 103
	ConnectionReset               Errno = 104
	NoBufferSpace                 Errno = 105
	AlreadyConnected              Errno = 106
	NotConnected                  Errno = 107
	EndpointShutdown              Errno = 108
	TooManyReferences             Errno = 109
	ConnectionTimeout             Errno = 110
	ConnectionRefused             Errno = 111
	HostDown                      Errno = 112
	HostUnreachable               Errno = 113
	AlreadyInProgress             Errno = 114
	InProgress                    Errno = 115
	StaleFileHandle               Errno = 116
	StructureNeedsCleaning        Errno = 117
	NotXenixFile                  Errno = 118
	NoXenixSemaphores             Errno = 119
	IsNamedFile                   Errno = 120
	RemoteIOError                 Errno = 121
	QuotaExceeded                 Errno = 122
	NoMediumFound                 Errno = 123
	WrongMediumType               Errno = 124
	OperationCanceled             Errno = 125
	KeyNotAvailable               Errno = 126
	KeyExpired                    Errno = 127
	KeyRevoked                    Errno = 128
	KeyRejected                   Errno = 129
	MutexOwnerDied                Errno = 130
	MutexNotRecoverable           Errno = 131
	RFKill                        Errno = 132
	HardwarePoison                Errno = 133
	InlineDataError               Errno = 134
	UserQuotaExceeded             Errno = 135
	GroupQuotaExceeded            Errno = 136
	ProjectQuotaExceeded          Errno = 137
	SocketOperationNotSupported   Errno = 138
	InappropriateIOCTL            Errno = 139
	NoSuchAttribute               Errno = 140
	AttributeNotFound             Errno = 141
	DirectoryEntryTooLarge        Errno = 142
	EncryptionNotSupported        Errno = 143
	SnapshotNotSupported          Errno = 144
	CompressionNotSupported       Errno = 145
	NoDataVerificationKey         Errno = 146
	VerityNotSupported            Errno = 147
	VerityDataCorrupted           Errno = 148
	VerityNotAuthorized           Errno = 149
	NoVerityFileDescriptor        Errno = 150
	FilesystemOperationNotSupported Errno = 151
)

var text = map[Errno]string{
	OperationNotPermitted:         "operation not permitted",
	FileNotFound:                  "no such file or directory",
	ProcessNotFound:               "no such process",
	Interrupted:                   "interrupted system call",
	IOError:                       "input/output error",
	DeviceNotFound:                "no such device or address",
	ArgumentListTooLong:           "argument list too long",
	InvalidExecutable:             "exec format error",
	BadFileDescriptor:             "bad file descriptor",
	NoChildProcesses:              "no child processes",
	TryAgain:                      "resource temporarily unavailable",
	OutOfMemory:                   "cannot allocate memory",
	PermissionDenied:              "permission denied",
	BadAddress:                    "bad address",
	BlockDeviceRequired:           "block device required",
	DeviceBusy:                    "device or resource busy",
	FileExists:                    "file exists",
	CrossDeviceLink:               "invalid cross-device link",
	NoSuchDevice:                  "no such device",
	NotADirectory:                 "not a directory",
	IsADirectory:                  "is a directory",
	InvalidArgument:               "invalid argument",
	FileTableOverflow:             "too many open files in system",
	TooManyOpenFiles:              "too many open files",
	NotATerminal:                  "inappropriate ioctl for device",
	TextFileBusy:                  "text file busy",
	FileTooLarge:                  "file too large",
	NoSpaceLeft:                   "no space left on device",
	IllegalSeek:                   "illegal seek",
	ReadOnlyFilesystem:            "read-only file system",
	TooManyLinks:                  "too many links",
	BrokenPipe:                    "broken pipe",
	MathDomainError:               "numerical argument out of domain",
	MathRangeError:                "numerical result out of range",
	Deadlock:                      "resource deadlock avoided",
	FilenameTooLong:               "file name too long",
	NoLocksAvailable:              "no locks available",
	NotImplemented:                "function not implemented",
	DirectoryNotEmpty:             "directory not empty",
	TooManySymlinks:               "too many levels of symbolic links",
	NoMessage:                     "no message of desired type",
	IdentifierRemoved:             "identifier removed",
	InvalidMessage:                "invalid message",
	NotAStream:                    "device not a stream",
	NoDataAvailable:               "no data available",
	TimerExpired:                  "timer expired",
	ValueOverflow:                 "value too large for defined data type",
	IllegalByteSequence:           "invalid or incomplete multibyte or wide character",
	RestartSyscall:                "interrupted system call should be restarted",
	NotASocket:                    "socket operation on non-socket",
	MessageTooLong:                "message too long",
	ProtocolNotSupported:          "protocol not supported",
	OperationNotSupported:         "operation not supported",
	AddressInUse:                  "address already in use",
	AddressNotAvailable:           "cannot assign requested address",
	NetworkDown:                   "network is down",
	NetworkUnreachable:            "network is unreachable",
	ConnectionAborted:             "software caused connection abort",
	ConnectionReset:               "connection reset by peer",
	NoBufferSpace:                 "no buffer space available",
	AlreadyConnected:              "transport endpoint is already connected",
	NotConnected:                  "transport endpoint is not connected",
	ConnectionTimeout:             "connection timed out",
	ConnectionRefused:             "connection refused",
	HostUnreachable:               "no route to host",
	AlreadyInProgress:             "operation already in progress",
	InProgress:                    "operation now in progress",
	StaleFileHandle:               "stale file handle",
	QuotaExceeded:                 "disk quota exceeded",
	OperationCanceled:             "operation canceled",
	InappropriateIOCTL:            "inappropriate ioctl for device",
	NoSuchAttribute:               "no such attribute",
	AttributeNotFound:             "attribute not found",
}
