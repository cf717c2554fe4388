package protocol

import (
	"encoding/binary"

	"memtap/domain/proc"
	"memtap/infrastructure/compression"
)

// TargetPidRequest binds the session to a target process. The response is the
// region list for that pid, so one round trip both binds and maps.
type TargetPidRequest struct {
	TargetPid int32
}

func (p TargetPidRequest) Encode() []byte {
	buf := make([]byte, 0, 5)
	buf = append(buf, byte(PacketTargetPID))
	return binary.BigEndian.AppendUint32(buf, uint32(p.TargetPid))
}

func DecodeTargetPidRequest(data []byte) (TargetPidRequest, error) {
	r, err := header(data, PacketTargetPID)
	if err != nil {
		return TargetPidRequest{}, err
	}
	pid, err := r.i32()
	if err != nil {
		return TargetPidRequest{}, err
	}
	return TargetPidRequest{TargetPid: pid}, nil
}

// RegionsResponse is the memory map of the bound target. Region lists run to
// hundreds of entries with long pathnames, so the whole serialized frame
// (tag byte included) is lz4-compressed and the compressed bytes go on the wire.
type RegionsResponse struct {
	Regions []proc.Region
}

func (p RegionsResponse) Encode() ([]byte, error) {
	return compression.Compress(p.encodeInner())
}

// EncodeInner returns the uncompressed serialized frame. Exposed so tests can
// pin the inner layout without chasing compressor output.
func (p RegionsResponse) EncodeInner() []byte {
	return p.encodeInner()
}

func (p RegionsResponse) encodeInner() []byte {
	buf := make([]byte, 0, 5+64*len(p.Regions))
	buf = append(buf, byte(PacketTargetPID))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(p.Regions)))
	for _, region := range p.Regions {
		buf = binary.BigEndian.AppendUint64(buf, region.Start)
		buf = binary.BigEndian.AppendUint64(buf, region.End)
		buf = binary.BigEndian.AppendUint64(buf, region.Size)
		buf = append(buf, region.Permissions)
		buf = binary.BigEndian.AppendUint64(buf, region.Offset)
		buf = appendString(buf, region.Device)
		buf = binary.BigEndian.AppendUint64(buf, region.Inode)
		buf = appendString(buf, region.Pathname)
	}
	return buf
}

func DecodeRegionsResponse(data []byte) (RegionsResponse, error) {
	inner, err := compression.Decompress(data)
	if err != nil {
		return RegionsResponse{}, err
	}
	r, err := header(inner, PacketTargetPID)
	if err != nil {
		return RegionsResponse{}, err
	}
	count, err := r.u32()
	if err != nil {
		return RegionsResponse{}, err
	}
	regions := make([]proc.Region, 0, count)
	for i := uint32(0); i < count; i++ {
		region, regionErr := decodeRegion(r)
		if regionErr != nil {
			return RegionsResponse{}, regionErr
		}
		regions = append(regions, region)
	}
	return RegionsResponse{Regions: regions}, nil
}

func decodeRegion(r *reader) (proc.Region, error) {
	var region proc.Region
	var err error
	if region.Start, err = r.u64(); err != nil {
		return proc.Region{}, err
	}
	if region.End, err = r.u64(); err != nil {
		return proc.Region{}, err
	}
	if region.Size, err = r.u64(); err != nil {
		return proc.Region{}, err
	}
	if region.Permissions, err = r.u8(); err != nil {
		return proc.Region{}, err
	}
	if region.Offset, err = r.u64(); err != nil {
		return proc.Region{}, err
	}
	if region.Device, err = r.str(); err != nil {
		return proc.Region{}, err
	}
	if region.Inode, err = r.u64(); err != nil {
		return proc.Region{}, err
	}
	if region.Pathname, err = r.str(); err != nil {
		return proc.Region{}, err
	}
	return region, nil
}

// ProcessesRequest asks for the process list; it needs no bound target.
type ProcessesRequest struct{}

func (p ProcessesRequest) Encode() []byte {
	return []byte{byte(PacketSendProcesses)}
}

func DecodeProcessesRequest(data []byte) (ProcessesRequest, error) {
	if _, err := header(data, PacketSendProcesses); err != nil {
		return ProcessesRequest{}, err
	}
	return ProcessesRequest{}, nil
}

// ProcessesResponse lists every visible process. Compressed whole-frame,
// same as RegionsResponse.
type ProcessesResponse struct {
	Processes []proc.Entry
}

func (p ProcessesResponse) Encode() ([]byte, error) {
	return compression.Compress(p.encodeInner())
}

// EncodeInner returns the uncompressed serialized frame for layout tests.
func (p ProcessesResponse) EncodeInner() []byte {
	return p.encodeInner()
}

func (p ProcessesResponse) encodeInner() []byte {
	buf := make([]byte, 0, 5+32*len(p.Processes))
	buf = append(buf, byte(PacketSendProcesses))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(p.Processes)))
	for _, entry := range p.Processes {
		buf = appendString(buf, entry.Name)
		buf = binary.BigEndian.AppendUint32(buf, uint32(entry.Pid))
	}
	return buf
}

func DecodeProcessesResponse(data []byte) (ProcessesResponse, error) {
	inner, err := compression.Decompress(data)
	if err != nil {
		return ProcessesResponse{}, err
	}
	r, err := header(inner, PacketSendProcesses)
	if err != nil {
		return ProcessesResponse{}, err
	}
	count, err := r.u32()
	if err != nil {
		return ProcessesResponse{}, err
	}
	processes := make([]proc.Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		name, nameErr := r.str()
		if nameErr != nil {
			return ProcessesResponse{}, nameErr
		}
		pid, pidErr := r.i32()
		if pidErr != nil {
			return ProcessesResponse{}, pidErr
		}
		processes = append(processes, proc.Entry{Name: name, Pid: pid})
	}
	return ProcessesResponse{Processes: processes}, nil
}
